package render

import (
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/sirupsen/logrus"
)

// Renderer interprets one block's data payload and produces a displayable or
// redirectable result. Implementations own the shape of their data payload
// and validate it on every render.
type Renderer interface {
	// Kind returns the renderer tag the strategy handles.
	Kind() string
	// Render validates the block's data payload and produces a result.
	Render(block *model.Block) (*Result, error)
	// Metadata derives the SEO metadata for the block.
	Metadata(block *model.Block) Metadata
	// CacheTTL returns the cache hint for results of this renderer. It is
	// advisory, the boundary layer decides whether to honor it.
	CacheTTL() time.Duration
}

// Registry is the closed set of renderer strategies, keyed by renderer tag.
// Adding a renderer means registering it in NewRegistry, there is no runtime
// registration.
type Registry struct {
	renderers map[string]Renderer
}

func NewRegistry() *Registry {
	registry := &Registry{
		renderers: make(map[string]Renderer),
	}

	registry.add(RedirectRenderer{})
	registry.add(ArticleRenderer{})
	registry.add(ImageRenderer{})
	registry.add(CardRenderer{})
	registry.add(GalleryRenderer{})
	registry.add(PageRenderer{})
	registry.add(HeadingRenderer{})
	registry.add(TextRenderer{})

	return registry
}

func (r *Registry) add(renderer Renderer) {
	r.renderers[renderer.Kind()] = renderer
}

// Lookup returns the strategy registered for the tag.
func (r *Registry) Lookup(tag string) (Renderer, error) {
	renderer, ok := r.renderers[tag]
	if !ok {
		return nil, ErrUnknownRenderer
	}

	return renderer, nil
}

// Render dispatches the block to its renderer and recursively renders any
// assembled children. A child that fails validation degrades to a skipped
// entry instead of failing the whole composition.
func (r *Registry) Render(block *model.Block) (*Result, error) {
	renderer, err := r.Lookup(block.Renderer)
	if err != nil {
		return nil, err
	}

	result, err := renderer.Render(block)
	if err != nil {
		return nil, err
	}

	result.Renderer = block.Renderer
	result.Meta = renderer.Metadata(block)
	result.TTL = renderer.CacheTTL()

	for _, child := range block.Children {
		childResult, err := r.Render(child)
		if err != nil {
			logrus.Warnf("skipping child block %s of %s: %v", child.ID, block.Slug, err)
			continue
		}
		result.Children = append(result.Children, childResult)
	}

	return result, nil
}
