package model

import "time"

// landingRowID is the primary key of the only row the landing_blocks table
// ever holds.
const landingRowID = 1

// LandingBlock is a singleton row pointing at the block shown on the site
// root. Keeping the designation in one row makes replacing the landing block
// a single atomic write instead of a clear-many-set-one update across the
// blocks table.
type LandingBlock struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	BlockID   string    `gorm:"uuid;not null" json:"block_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *LandingBlock) TableName() string {
	return "landing_blocks"
}

// NewLandingBlock returns the singleton row pointing at blockID.
func NewLandingBlock(blockID string) *LandingBlock {
	return &LandingBlock{ID: landingRowID, BlockID: blockID}
}
