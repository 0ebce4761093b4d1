package render

import (
	"encoding/json"

	"github.com/emrgen/shortpage/internal/model"
)

// defaultTitle is the generic fallback when neither the block data nor its
// metadata provide one.
const defaultTitle = "shortpage"

// Metadata is the SEO payload derived for a rendered block.
type Metadata struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description,omitempty"`
	OGImage       string `json:"og_image,omitempty"`
	OGType        string `json:"og_type"`
	TwitterCard   string `json:"twitter_card"`
}

// blockMeta is the shape renderers understand inside a block's metadata
// payload. The payload is open-ended, unknown fields are ignored and nothing
// here is required to be present.
type blockMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	OGType      string `json:"ogType"`
}

// buildMetadata synthesizes SEO metadata with the defined fallback
// precedence: renderer-specific data field, then explicit metadata field,
// then a generic default.
func buildMetadata(block *model.Block, dataTitle, dataDescription, dataImage, ogType string) Metadata {
	var meta blockMeta
	// metadata shape is never required, a malformed payload is ignored
	_ = json.Unmarshal(block.Metadata, &meta)

	title := dataTitle
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = defaultTitle
	}

	description := dataDescription
	if description == "" {
		description = meta.Description
	}

	image := dataImage
	if image == "" {
		image = meta.Image
	}

	if meta.OGType != "" {
		ogType = meta.OGType
	}

	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}

	return Metadata{
		Title:         title,
		Description:   description,
		OGTitle:       title,
		OGDescription: description,
		OGImage:       image,
		OGType:        ogType,
		TwitterCard:   card,
	}
}
