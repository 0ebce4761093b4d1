package service

import (
	"context"
	"encoding/json"

	"github.com/emrgen/shortpage/internal/cache"
	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// NewBlockService creates a new BlockService.
func NewBlockService(store store.Store, blockCache cache.BlockCache) *BlockService {
	return &BlockService{
		store: store,
		cache: blockCache,
	}
}

// BlockService manages blocks on behalf of the admin surface: creation,
// updates, deletion, landing designation and privacy.
type BlockService struct {
	store store.Store
	cache cache.BlockCache
}

// ChildParams describes one child of a composite block on creation. Child
// slugs are synthesized, callers never choose them. A nil DisplayOrder
// defaults to the child's position in the slice, an explicit 0 is kept.
type ChildParams struct {
	Renderer     string          `json:"renderer"`
	Data         json.RawMessage `json:"data"`
	DisplayOrder *int            `json:"display_order"`
}

type CreateBlockParams struct {
	Slug         string          `json:"slug"`
	Renderer     string          `json:"renderer"`
	Data         json.RawMessage `json:"data"`
	Metadata     json.RawMessage `json:"metadata"`
	DisplayOrder int             `json:"display_order"`
	IsPublished  bool            `json:"is_published"`
	IsPrivate    bool            `json:"is_private"`
	Children     []ChildParams   `json:"children,omitempty"`
}

// CreateBlock creates a root block and its children in one transaction.
func (s *BlockService) CreateBlock(ctx context.Context, params CreateBlockParams) (*model.Block, error) {
	block := &model.Block{
		Slug:         params.Slug,
		Kind:         model.KindRoot,
		Renderer:     params.Renderer,
		Data:         datatypes.JSON(params.Data),
		Metadata:     datatypes.JSON(params.Metadata),
		DisplayOrder: params.DisplayOrder,
		IsPublished:  params.IsPublished,
		IsPrivate:    params.IsPrivate,
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateBlock(ctx, block); err != nil {
			return err
		}

		for i, childParams := range params.Children {
			order := i
			if childParams.DisplayOrder != nil {
				order = *childParams.DisplayOrder
			}

			child := &model.Block{
				Slug:         model.ChildSlug(block.Slug),
				Kind:         model.KindChild,
				ParentID:     &block.ID,
				Renderer:     childParams.Renderer,
				Data:         datatypes.JSON(childParams.Data),
				DisplayOrder: order,
				IsPublished:  params.IsPublished,
			}
			if err := tx.CreateBlock(ctx, child); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}

// GetBlock retrieves a block by id.
func (s *BlockService) GetBlock(ctx context.Context, id string) (*model.Block, error) {
	return s.store.GetBlock(ctx, id)
}

// ListBlocks retrieves all root blocks for the admin listing.
func (s *BlockService) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	return s.store.ListBlocks(ctx)
}

// UpdateBlockParams carries a partial block update. Nil fields are left
// untouched. Slugs are immutable and privacy is flipped through
// TogglePrivacy, neither appears here.
type UpdateBlockParams struct {
	Renderer     *string         `json:"renderer"`
	Data         json.RawMessage `json:"data"`
	Metadata     json.RawMessage `json:"metadata"`
	DisplayOrder *int            `json:"display_order"`
	IsPublished  *bool           `json:"is_published"`
}

// UpdateBlock applies a partial update and invalidates the block's cache
// entry.
func (s *BlockService) UpdateBlock(ctx context.Context, id string, params *UpdateBlockParams) (*model.Block, error) {
	block, err := s.store.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Renderer != nil {
		block.Renderer = *params.Renderer
	}
	if params.Data != nil {
		block.Data = datatypes.JSON(params.Data)
	}
	if params.Metadata != nil {
		block.Metadata = datatypes.JSON(params.Metadata)
	}
	if params.DisplayOrder != nil {
		block.DisplayOrder = *params.DisplayOrder
	}
	if params.IsPublished != nil {
		block.IsPublished = *params.IsPublished
	}

	if err := block.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBlock(ctx, block); err != nil {
		return nil, err
	}

	s.invalidate(ctx, block.Slug)

	return block, nil
}

// DeleteBlock deletes a block, its children and click events.
func (s *BlockService) DeleteBlock(ctx context.Context, id string) error {
	block, err := s.store.GetBlock(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBlock(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, block.Slug)

	return nil
}

// BlockStats is the aggregate click view for one block.
type BlockStats struct {
	BlockID      string              `json:"block_id"`
	TotalClicks  int64               `json:"total_clicks"`
	RecentClicks []*model.ClickEvent `json:"recent_clicks"`
}

// GetBlockStats returns the click count and the most recent click events.
func (s *BlockService) GetBlockStats(ctx context.Context, id string) (*BlockStats, error) {
	block, err := s.store.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountClicks(ctx, block.ID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.store.ListClicks(ctx, block.ID, 100, 0)
	if err != nil {
		return nil, err
	}

	return &BlockStats{
		BlockID:      block.ID,
		TotalClicks:  count,
		RecentClicks: clicks,
	}, nil
}

func (s *BlockService) invalidate(ctx context.Context, slug string) {
	if err := s.cache.DeleteBlock(ctx, slug); err != nil {
		logrus.Warnf("block cache invalidation for %q failed: %v", slug, err)
	}
	if err := s.cache.DeletePublicIndex(ctx); err != nil {
		logrus.Warnf("public index cache invalidation failed: %v", err)
	}
}
