package model

import (
	"time"

	"gorm.io/datatypes"
)

// Click event types.
const (
	ClickTypeView     = "view"
	ClickTypeRedirect = "redirect"
)

// ClickEvent is an append-only analytics fact recorded on every resolution.
// Events are removed only when their block is deleted or by the retention job.
type ClickEvent struct {
	ID        string         `gorm:"primaryKey;uuid;not null" json:"id"`
	BlockID   string         `gorm:"uuid;not null;index" json:"block_id"`
	Type      string         `gorm:"size:16;not null" json:"type"`
	ClickedAt time.Time      `gorm:"not null;index" json:"clicked_at"`
	Referrer  string         `json:"referrer,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Country   string         `json:"country,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}

func (c *ClickEvent) TableName() string {
	return "click_events"
}
