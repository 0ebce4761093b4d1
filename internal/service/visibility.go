package service

import (
	"context"
	"errors"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
)

// GetLandingBlock returns the designated landing block, or nil when none is
// set or the designation points at a deleted block.
func (s *BlockService) GetLandingBlock(ctx context.Context) (*model.Block, error) {
	blockID, err := s.store.GetLandingBlockID(ctx)
	if errors.Is(err, store.ErrLandingNotSet) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	block, err := s.store.GetBlock(ctx, blockID)
	if errors.Is(err, store.ErrBlockNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return block, nil
}

// SetLandingBlock designates the block as the site landing page. The block
// must exist and be published. A private block is forced public, the landing
// block is always public. The designation swap is one transaction, two
// concurrent calls settle on exactly one landing block.
func (s *BlockService) SetLandingBlock(ctx context.Context, id string) error {
	var slug string

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		block, err := tx.GetBlock(ctx, id)
		if err != nil {
			return err
		}
		if block.Kind != model.KindRoot {
			return ErrNotRootBlock
		}
		if !block.IsPublished {
			return ErrBlockNotPublished
		}

		if block.IsPrivate {
			block.IsPrivate = false
			if err := tx.UpdateBlock(ctx, block); err != nil {
				return err
			}
		}

		slug = block.Slug

		return tx.SetLandingBlockID(ctx, block.ID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, slug)

	return nil
}

// RemoveLandingBlock clears the landing designation. Idempotent.
func (s *BlockService) RemoveLandingBlock(ctx context.Context) error {
	return s.store.ClearLandingBlock(ctx)
}

// TogglePrivacy flips a block's privacy flag. The current landing block is
// refused, it must stay public until the designation moves elsewhere.
func (s *BlockService) TogglePrivacy(ctx context.Context, id string) (*model.Block, error) {
	var toggled *model.Block

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		block, err := tx.GetBlock(ctx, id)
		if err != nil {
			return err
		}

		if !block.IsPrivate {
			landingID, err := tx.GetLandingBlockID(ctx)
			if err != nil && !errors.Is(err, store.ErrLandingNotSet) {
				return err
			}
			if landingID == block.ID {
				return ErrLandingBlockPrivate
			}
		}

		block.IsPrivate = !block.IsPrivate
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}

		toggled = block

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, toggled.Slug)

	return toggled, nil
}

// GetPublicBlocks returns the blocks eligible for the public index, cached
// when a cache is configured.
func (s *BlockService) GetPublicBlocks(ctx context.Context) ([]*model.Block, error) {
	cached, err := s.cache.GetPublicIndex(ctx)
	if err != nil {
		logrus.Warnf("public index cache get failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	blocks, err := s.store.ListPublicBlocks(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPublicIndex(ctx, blocks); err != nil {
		logrus.Warnf("public index cache set failed: %v", err)
	}

	return blocks, nil
}
