package jobs

import (
	"context"
	"time"

	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
)

// ClickPruner removes click events older than the retention window. Click
// events are append-only, pruning is the only delete path besides block
// deletion.
type ClickPruner struct {
	store     store.ClickStore
	retention time.Duration
	cron      string
}

func NewClickPruner(schedule string, retention time.Duration, store store.ClickStore) *ClickPruner {
	return &ClickPruner{
		store:     store,
		retention: retention,
		cron:      schedule,
	}
}

func (c *ClickPruner) Schedule() string {
	return c.cron
}

func (c *ClickPruner) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-c.retention)
	removed, err := c.store.DeleteClicksBefore(ctx, cutoff)
	if err != nil {
		logrus.Errorf("click pruning failed: %v", err)
		return
	}

	if removed > 0 {
		logrus.Infof("pruned %d click events older than %s", removed, cutoff.Format(time.RFC3339))
	}
}
