package cache

import (
	"context"

	"github.com/emrgen/shortpage/internal/model"
)

// BlockCache is a read-through cache for resolved blocks, keyed by slug.
// A nil block with a nil error is a cache miss.
type BlockCache interface {
	// GetBlock gets a block by slug from the cache.
	GetBlock(ctx context.Context, slug string) (*model.Block, error)
	// SetBlock sets a block in the cache under its slug.
	SetBlock(ctx context.Context, block *model.Block) error
	// DeleteBlock removes a block from the cache.
	DeleteBlock(ctx context.Context, slug string) error
	// SetPublicIndex caches the public index listing.
	SetPublicIndex(ctx context.Context, blocks []*model.Block) error
	// GetPublicIndex gets the cached public index listing.
	GetPublicIndex(ctx context.Context) ([]*model.Block, error)
	// DeletePublicIndex drops the cached public index listing.
	DeletePublicIndex(ctx context.Context) error
}

// Nop satisfies BlockCache without caching anything. Used when no redis
// address is configured and in tests.
type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) GetBlock(ctx context.Context, slug string) (*model.Block, error) {
	return nil, nil
}

func (Nop) SetBlock(ctx context.Context, block *model.Block) error {
	return nil
}

func (Nop) DeleteBlock(ctx context.Context, slug string) error {
	return nil
}

func (Nop) SetPublicIndex(ctx context.Context, blocks []*model.Block) error {
	return nil
}

func (Nop) GetPublicIndex(ctx context.Context) ([]*model.Block, error) {
	return nil, nil
}

func (Nop) DeletePublicIndex(ctx context.Context) error {
	return nil
}
