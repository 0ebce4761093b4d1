package store

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func rootBlock(slug string) *model.Block {
	return &model.Block{
		Slug:     slug,
		Kind:     model.KindRoot,
		Renderer: model.RendererRedirect,
		Data:     datatypes.JSON(`{"url":"https://example.com"}`),
	}
}

func TestGormStore_CreateBlock_SlugTaken(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	first := rootBlock("go-blog")
	assert.NoError(t, s.CreateBlock(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "{}", string(first.Metadata))

	err := s.CreateBlock(ctx, rootBlock("go-blog"))
	assert.ErrorIs(t, err, ErrSlugTaken)

	// the original row is untouched
	got, err := s.GetBlockBySlug(ctx, "go-blog")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestGormStore_CreateBlock_TrimsSlug(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	block := rootBlock("  padded  ")
	assert.NoError(t, s.CreateBlock(ctx, block))
	assert.Equal(t, "padded", block.Slug)

	// the stored slug matches what a request path can carry
	got, err := s.GetBlockBySlug(ctx, "padded")
	assert.NoError(t, err)
	assert.Equal(t, block.ID, got.ID)
}

func TestGormStore_GetBlock_NotFound(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())

	_, err := s.GetBlock(context.TODO(), uuid.New().String())
	assert.ErrorIs(t, err, ErrBlockNotFound)

	_, err = s.GetBlockBySlug(context.TODO(), "missing")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestGormStore_ListChildren_Order(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	parent := rootBlock("page")
	parent.Renderer = model.RendererPage
	assert.NoError(t, s.CreateBlock(ctx, parent))

	// created out of order on purpose
	for _, order := range []int{2, 0, 1} {
		child := &model.Block{
			Slug:         model.ChildSlug(parent.Slug),
			Kind:         model.KindChild,
			ParentID:     &parent.ID,
			Renderer:     model.RendererText,
			Data:         datatypes.JSON(`{"text":"t"}`),
			DisplayOrder: order,
		}
		assert.NoError(t, s.CreateBlock(ctx, child))
	}

	children, err := s.ListChildren(ctx, parent.ID)
	assert.NoError(t, err)
	assert.Len(t, children, 3)
	assert.Equal(t, 0, children[0].DisplayOrder)
	assert.Equal(t, 1, children[1].DisplayOrder)
	assert.Equal(t, 2, children[2].DisplayOrder)
}

func TestGormStore_ListPublicBlocks(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	published := rootBlock("public-one")
	published.IsPublished = true
	assert.NoError(t, s.CreateBlock(ctx, published))

	private := rootBlock("private-one")
	private.IsPublished = true
	private.IsPrivate = true
	assert.NoError(t, s.CreateBlock(ctx, private))

	draft := rootBlock("draft-one")
	assert.NoError(t, s.CreateBlock(ctx, draft))

	blocks, err := s.ListPublicBlocks(ctx)
	assert.NoError(t, err)
	assert.Len(t, blocks, 1)
	assert.Equal(t, "public-one", blocks[0].Slug)
}

func TestGormStore_DeleteBlock_Cascade(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	parent := rootBlock("to-delete")
	parent.Renderer = model.RendererPage
	parent.IsPublished = true
	assert.NoError(t, s.CreateBlock(ctx, parent))

	child := &model.Block{
		Slug:     model.ChildSlug(parent.Slug),
		Kind:     model.KindChild,
		ParentID: &parent.ID,
		Renderer: model.RendererText,
		Data:     datatypes.JSON(`{"text":"t"}`),
	}
	assert.NoError(t, s.CreateBlock(ctx, child))

	assert.NoError(t, s.CreateClick(ctx, &model.ClickEvent{
		ID:        uuid.New().String(),
		BlockID:   parent.ID,
		Type:      model.ClickTypeView,
		ClickedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}))

	assert.NoError(t, s.SetLandingBlockID(ctx, parent.ID))

	assert.NoError(t, s.DeleteBlock(ctx, parent.ID))

	_, err := s.GetBlock(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrBlockNotFound)
	_, err = s.GetBlock(ctx, child.ID)
	assert.ErrorIs(t, err, ErrBlockNotFound)

	count, err := s.CountClicks(ctx, parent.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = s.GetLandingBlockID(ctx)
	assert.ErrorIs(t, err, ErrLandingNotSet)
}

func TestGormStore_Landing_Singleton(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	_, err := s.GetLandingBlockID(ctx)
	assert.ErrorIs(t, err, ErrLandingNotSet)

	first := rootBlock("first")
	second := rootBlock("second")
	assert.NoError(t, s.CreateBlock(ctx, first))
	assert.NoError(t, s.CreateBlock(ctx, second))

	assert.NoError(t, s.SetLandingBlockID(ctx, first.ID))
	id, err := s.GetLandingBlockID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, id)

	// the designation row is replaced, never duplicated
	assert.NoError(t, s.SetLandingBlockID(ctx, second.ID))
	id, err = s.GetLandingBlockID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, second.ID, id)

	var count int64
	tester.TestDB().Model(&model.LandingBlock{}).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, s.ClearLandingBlock(ctx))
	assert.NoError(t, s.ClearLandingBlock(ctx))
	_, err = s.GetLandingBlockID(ctx)
	assert.ErrorIs(t, err, ErrLandingNotSet)
}

func TestGormStore_DeleteClicksBefore(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	block := rootBlock("clicked")
	assert.NoError(t, s.CreateBlock(ctx, block))

	now := time.Now()
	for _, age := range []time.Duration{time.Hour, 48 * time.Hour, 30 * 24 * time.Hour} {
		assert.NoError(t, s.CreateClick(ctx, &model.ClickEvent{
			ID:        uuid.New().String(),
			BlockID:   block.ID,
			Type:      model.ClickTypeRedirect,
			ClickedAt: now.Add(-age),
			Metadata:  datatypes.JSON("{}"),
		}))
	}

	removed, err := s.DeleteClicksBefore(ctx, now.Add(-24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := s.CountClicks(ctx, block.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_Transaction_Rollback(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.CreateBlock(ctx, rootBlock("txn-block")); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.GetBlockBySlug(ctx, "txn-block")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
