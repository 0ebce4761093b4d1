package render

import (
	"encoding/json"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

type articleData struct {
	Title      string            `json:"title"`
	Summary    string            `json:"summary"`
	Content    []json.RawMessage `json:"content"`
	CoverImage string            `json:"coverImage"`
}

// ArticleView is the rendered payload of an article block. The content
// entries stay opaque, their shape belongs to the editor frontend.
type ArticleView struct {
	Title      string            `json:"title"`
	Summary    string            `json:"summary,omitempty"`
	Content    []json.RawMessage `json:"content"`
	CoverImage string            `json:"cover_image,omitempty"`
}

type ArticleRenderer struct{}

func (ArticleRenderer) Kind() string {
	return model.RendererArticle
}

func (ArticleRenderer) CacheTTL() time.Duration {
	return 30 * time.Minute
}

func (ArticleRenderer) Render(block *model.Block) (*Result, error) {
	data, err := parseArticle(block)
	if err != nil {
		return nil, err
	}

	return &Result{
		Content: &ArticleView{
			Title:      data.Title,
			Summary:    data.Summary,
			Content:    data.Content,
			CoverImage: data.CoverImage,
		},
	}, nil
}

func (ArticleRenderer) Metadata(block *model.Block) Metadata {
	data, err := parseArticle(block)
	if err != nil {
		return buildMetadata(block, "", "", "", "article")
	}

	return buildMetadata(block, data.Title, data.Summary, data.CoverImage, "article")
}

func parseArticle(block *model.Block) (*articleData, error) {
	var data articleData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererArticle, "data payload is not an object")
	}
	if data.Title == "" {
		return nil, missingErr(model.RendererArticle, "article has no title")
	}
	if len(data.Content) == 0 {
		return nil, missingErr(model.RendererArticle, "article has no content")
	}

	return &data, nil
}
