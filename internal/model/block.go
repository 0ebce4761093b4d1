package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Block kinds. Root blocks are addressable by slug, child blocks exist only
// as members of a parent's composition.
const (
	KindRoot  = "root"
	KindChild = "child"
)

// Renderer tags. The tag selects the renderer strategy at resolution time.
const (
	RendererRedirect = "redirect"
	RendererArticle  = "article"
	RendererImage    = "image"
	RendererCard     = "card"
	RendererGallery  = "gallery"
	RendererPage     = "page"
	RendererHeading  = "heading"
	RendererText     = "text"
)

var (
	ErrEmptySlug       = errors.New("slug must not be empty")
	ErrSlugTooLong     = errors.New("slug must be at most 255 characters")
	ErrInvalidKind     = errors.New("kind must be root or child")
	ErrMissingParent   = errors.New("child block requires a parent id")
	ErrMissingRenderer = errors.New("renderer tag must not be empty")
)

// Block is the single polymorphic content entity. The Renderer tag
// discriminates the shape of Data; Metadata carries cross-cutting SEO
// and analytics hints and is always present.
type Block struct {
	ID           string         `gorm:"primaryKey;uuid;not null" json:"id"`
	Slug         string         `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Kind         string         `gorm:"size:16;not null;default:root" json:"kind"`
	ParentID     *string        `gorm:"uuid;index" json:"parent_id,omitempty"`
	Renderer     string         `gorm:"size:32;not null" json:"renderer"`
	Data         datatypes.JSON `gorm:"not null" json:"data"`
	Metadata     datatypes.JSON `gorm:"not null" json:"metadata"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	IsPublished  bool           `gorm:"not null;default:false" json:"is_published"`
	IsPrivate    bool           `gorm:"not null;default:false" json:"is_private"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Children is assembled by the resolver for composite blocks,
	// it is never persisted.
	Children []*Block `gorm:"-" json:"children,omitempty"`
}

// Validate checks the structural invariants of a block before it is stored.
// Renderer data shapes are validated by the renderers, not here.
func (b *Block) Validate() error {
	slug := strings.TrimSpace(b.Slug)
	if slug == "" {
		return ErrEmptySlug
	}
	if len(slug) > 255 {
		return ErrSlugTooLong
	}
	if b.Kind != KindRoot && b.Kind != KindChild {
		return ErrInvalidKind
	}
	if b.Kind == KindChild && (b.ParentID == nil || *b.ParentID == "") {
		return ErrMissingParent
	}
	if b.Renderer == "" {
		return ErrMissingRenderer
	}
	return nil
}

// Normalize fills the fields the store expects to be present: a generated
// id, a default empty metadata object and an empty data object. The slug is
// trimmed, a stored slug with surrounding whitespace would never match a
// request path.
func (b *Block) Normalize() {
	b.Slug = strings.TrimSpace(b.Slug)
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if len(b.Data) == 0 {
		b.Data = datatypes.JSON("{}")
	}
	if len(b.Metadata) == 0 {
		b.Metadata = datatypes.JSON("{}")
	}
}

// ChildSlug synthesizes a globally unique slug for a child block. Children
// are never resolved by slug directly, the synthesized value only satisfies
// the unique index on the slug column.
func ChildSlug(parentSlug string) string {
	return parentSlug + "-" + uuid.New().String()[:8]
}
