package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlock_Validate(t *testing.T) {
	parentID := "p1"

	tests := []struct {
		name  string
		block Block
		err   error
	}{
		{
			name:  "valid root",
			block: Block{Slug: "go-blog", Kind: KindRoot, Renderer: RendererRedirect},
		},
		{
			name:  "valid child",
			block: Block{Slug: "go-blog-abc", Kind: KindChild, ParentID: &parentID, Renderer: RendererText},
		},
		{
			name:  "empty slug",
			block: Block{Kind: KindRoot, Renderer: RendererRedirect},
			err:   ErrEmptySlug,
		},
		{
			name:  "whitespace slug",
			block: Block{Slug: "   ", Kind: KindRoot, Renderer: RendererRedirect},
			err:   ErrEmptySlug,
		},
		{
			name:  "slug too long",
			block: Block{Slug: strings.Repeat("a", 256), Kind: KindRoot, Renderer: RendererRedirect},
			err:   ErrSlugTooLong,
		},
		{
			name:  "bad kind",
			block: Block{Slug: "x", Kind: "grandparent", Renderer: RendererRedirect},
			err:   ErrInvalidKind,
		},
		{
			name:  "child without parent",
			block: Block{Slug: "x", Kind: KindChild, Renderer: RendererText},
			err:   ErrMissingParent,
		},
		{
			name:  "missing renderer",
			block: Block{Slug: "x", Kind: KindRoot},
			err:   ErrMissingRenderer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestBlock_Normalize(t *testing.T) {
	block := Block{Slug: "x", Kind: KindRoot, Renderer: RendererCard}
	block.Normalize()

	assert.NotEmpty(t, block.ID)
	assert.Equal(t, "{}", string(block.Data))
	assert.Equal(t, "{}", string(block.Metadata))

	// normalize never overwrites what is already there
	id := block.ID
	block.Normalize()
	assert.Equal(t, id, block.ID)
}

func TestBlock_Normalize_TrimsSlug(t *testing.T) {
	block := Block{Slug: "  padded  ", Kind: KindRoot, Renderer: RendererCard}
	block.Normalize()

	assert.Equal(t, "padded", block.Slug)
}

func TestChildSlug(t *testing.T) {
	first := ChildSlug("go-blog")
	second := ChildSlug("go-blog")

	assert.True(t, strings.HasPrefix(first, "go-blog-"))
	assert.NotEqual(t, first, second)
}
