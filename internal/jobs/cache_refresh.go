package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/shortpage/internal/cache"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
)

// CacheRefresh re-warms the hot cache entries: the public index and the
// landing block. Resolution works without it, the job only keeps the first
// request after an invalidation off the database.
type CacheRefresh struct {
	store store.Store
	cache cache.BlockCache
	cron  string
}

func NewCacheRefresh(schedule string, store store.Store, blockCache cache.BlockCache) *CacheRefresh {
	return &CacheRefresh{
		store: store,
		cache: blockCache,
		cron:  schedule,
	}
}

func (c *CacheRefresh) Schedule() string {
	return c.cron
}

func (c *CacheRefresh) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	blocks, err := c.store.ListPublicBlocks(ctx)
	if err != nil {
		logrus.Errorf("cache refresh: listing public blocks failed: %v", err)
		return
	}

	if err := c.cache.SetPublicIndex(ctx, blocks); err != nil {
		logrus.Errorf("cache refresh: caching public index failed: %v", err)
	}

	landingID, err := c.store.GetLandingBlockID(ctx)
	if errors.Is(err, store.ErrLandingNotSet) {
		return
	}
	if err != nil {
		logrus.Errorf("cache refresh: landing lookup failed: %v", err)
		return
	}

	landing, err := c.store.GetBlock(ctx, landingID)
	if err != nil {
		logrus.Errorf("cache refresh: landing block fetch failed: %v", err)
		return
	}

	if err := c.cache.SetBlock(ctx, landing); err != nil {
		logrus.Errorf("cache refresh: caching landing block failed: %v", err)
	}
}
