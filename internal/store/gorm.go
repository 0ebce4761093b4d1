package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateBlock(ctx context.Context, block *model.Block) error {
	block.Normalize()
	if err := block.Validate(); err != nil {
		return err
	}

	var count int64
	if err := g.db.WithContext(ctx).Model(&model.Block{}).Where("slug = ?", block.Slug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}

	err := g.db.WithContext(ctx).Create(block).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race against a concurrent create on the same slug
		return ErrSlugTaken
	}

	return err
}

func (g *GormStore) GetBlock(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}

	return &block, nil
}

func (g *GormStore) GetBlockBySlug(ctx context.Context, slug string) (*model.Block, error) {
	var block model.Block
	err := g.db.WithContext(ctx).Where("slug = ?", slug).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}

	return &block, nil
}

func (g *GormStore) ListChildren(ctx context.Context, parentID string) ([]*model.Block, error) {
	var blocks []*model.Block
	err := g.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("display_order asc, updated_at asc").
		Find(&blocks).Error
	return blocks, err
}

func (g *GormStore) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	var blocks []*model.Block
	err := g.db.WithContext(ctx).
		Where("kind = ?", model.KindRoot).
		Order("created_at desc").
		Find(&blocks).Error
	return blocks, err
}

func (g *GormStore) ListPublicBlocks(ctx context.Context) ([]*model.Block, error) {
	var blocks []*model.Block
	err := g.db.WithContext(ctx).
		Where("kind = ? AND is_published = ? AND is_private = ?", model.KindRoot, true, false).
		Order("display_order asc, updated_at asc").
		Find(&blocks).Error
	return blocks, err
}

func (g *GormStore) UpdateBlock(ctx context.Context, block *model.Block) error {
	return g.db.WithContext(ctx).Save(block).Error
}

// DeleteBlock removes the block, its children and every click event
// referencing them in one transaction. A landing designation pointing at the
// block is cleared as well.
func (g *GormStore) DeleteBlock(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var children []*model.Block
		if err := tx.Select("id").Where("parent_id = ?", id).Find(&children).Error; err != nil {
			return err
		}

		ids := make([]string, 0, len(children)+1)
		ids = append(ids, id)
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		if err := tx.Where("block_id in (?)", ids).Delete(&model.ClickEvent{}).Error; err != nil {
			return err
		}

		if err := tx.Where("block_id = ?", id).Delete(&model.LandingBlock{}).Error; err != nil {
			return err
		}

		return tx.Where("id in (?)", ids).Delete(&model.Block{}).Error
	})
}

func (g *GormStore) CreateClick(ctx context.Context, click *model.ClickEvent) error {
	return g.db.WithContext(ctx).Create(click).Error
}

func (g *GormStore) CountClicks(ctx context.Context, blockID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.ClickEvent{}).Where("block_id = ?", blockID).Count(&count).Error
	return count, err
}

func (g *GormStore) ListClicks(ctx context.Context, blockID string, limit, offset int) ([]*model.ClickEvent, error) {
	var clicks []*model.ClickEvent
	err := g.db.WithContext(ctx).
		Where("block_id = ?", blockID).
		Order("clicked_at desc").
		Limit(limit).
		Offset(offset).
		Find(&clicks).Error
	return clicks, err
}

func (g *GormStore) DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := g.db.WithContext(ctx).Where("clicked_at < ?", cutoff).Delete(&model.ClickEvent{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) GetLandingBlockID(ctx context.Context) (string, error) {
	var landing model.LandingBlock
	err := g.db.WithContext(ctx).First(&landing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrLandingNotSet
	}
	if err != nil {
		return "", err
	}

	return landing.BlockID, nil
}

func (g *GormStore) SetLandingBlockID(ctx context.Context, blockID string) error {
	landing := model.NewLandingBlock(blockID)
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"block_id", "updated_at"}),
		}).
		Create(landing).Error
}

func (g *GormStore) ClearLandingBlock(ctx context.Context) error {
	return g.db.WithContext(ctx).Where("id > 0").Delete(&model.LandingBlock{}).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
