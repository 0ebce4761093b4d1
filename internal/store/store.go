package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

var (
	// ErrBlockNotFound is returned when no block matches a slug or id.
	ErrBlockNotFound = errors.New("block not found")
	// ErrSlugTaken is returned when creating a block whose slug is already in use.
	ErrSlugTaken = errors.New("slug is already taken")
	// ErrLandingNotSet is returned when no landing block is designated.
	ErrLandingNotSet = errors.New("landing block not set")
)

type Store interface {
	BlockStore
	ClickStore
	LandingStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type BlockStore interface {
	// CreateBlock creates a new block. Fails with ErrSlugTaken when the slug
	// is already in use, the existing row is left untouched.
	CreateBlock(ctx context.Context, block *model.Block) error
	// GetBlock retrieves a block by id.
	GetBlock(ctx context.Context, id string) (*model.Block, error)
	// GetBlockBySlug retrieves a block by its slug.
	GetBlockBySlug(ctx context.Context, slug string) (*model.Block, error)
	// ListChildren retrieves the children of a block ordered by display_order
	// ascending, ties broken by update time.
	ListChildren(ctx context.Context, parentID string) ([]*model.Block, error)
	// ListBlocks retrieves all root blocks for admin listings.
	ListBlocks(ctx context.Context) ([]*model.Block, error)
	// ListPublicBlocks retrieves published, non-private root blocks ordered
	// for the public index.
	ListPublicBlocks(ctx context.Context) ([]*model.Block, error)
	// UpdateBlock updates a block.
	UpdateBlock(ctx context.Context, block *model.Block) error
	// DeleteBlock deletes a block together with its children and click events.
	DeleteBlock(ctx context.Context, id string) error
}

type ClickStore interface {
	// CreateClick appends a click event.
	CreateClick(ctx context.Context, click *model.ClickEvent) error
	// CountClicks returns the number of click events recorded for a block.
	CountClicks(ctx context.Context, blockID string) (int64, error)
	// ListClicks retrieves the most recent click events for a block.
	ListClicks(ctx context.Context, blockID string, limit, offset int) ([]*model.ClickEvent, error)
	// DeleteClicksBefore removes click events older than the cutoff.
	DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type LandingStore interface {
	// GetLandingBlockID returns the id of the designated landing block.
	GetLandingBlockID(ctx context.Context) (string, error)
	// SetLandingBlockID points the singleton landing row at blockID.
	SetLandingBlockID(ctx context.Context, blockID string) error
	// ClearLandingBlock removes the landing designation, idempotent.
	ClearLandingBlock(ctx context.Context) error
}
