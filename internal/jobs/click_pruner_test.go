package jobs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/emrgen/shortpage/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}

func TestClickPruner_Run(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	ctx := context.TODO()

	block := &model.Block{
		Slug:     "pruned",
		Kind:     model.KindRoot,
		Renderer: model.RendererRedirect,
		Data:     datatypes.JSON(`{"url":"https://example.com"}`),
	}
	assert.NoError(t, gormStore.CreateBlock(ctx, block))

	now := time.Now()
	for _, age := range []time.Duration{time.Hour, 100 * 24 * time.Hour} {
		assert.NoError(t, gormStore.CreateClick(ctx, &model.ClickEvent{
			ID:        uuid.New().String(),
			BlockID:   block.ID,
			Type:      model.ClickTypeView,
			ClickedAt: now.Add(-age),
			Metadata:  datatypes.JSON("{}"),
		}))
	}

	pruner := NewClickPruner("@daily", 90*24*time.Hour, gormStore)
	pruner.Run()

	count, err := gormStore.CountClicks(ctx, block.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
