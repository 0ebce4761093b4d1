package render

import (
	"encoding/json"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

type cardData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
}

type CardView struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
}

type CardRenderer struct{}

func (CardRenderer) Kind() string {
	return model.RendererCard
}

func (CardRenderer) CacheTTL() time.Duration {
	return time.Hour
}

func (CardRenderer) Render(block *model.Block) (*Result, error) {
	data, err := parseCard(block)
	if err != nil {
		return nil, err
	}

	return &Result{
		Content: &CardView{
			Title:       data.Title,
			Description: data.Description,
			URL:         data.URL,
			Image:       data.Image,
		},
	}, nil
}

func (CardRenderer) Metadata(block *model.Block) Metadata {
	data, err := parseCard(block)
	if err != nil {
		return buildMetadata(block, "", "", "", "website")
	}

	return buildMetadata(block, data.Title, data.Description, data.Image, "website")
}

func parseCard(block *model.Block) (*cardData, error) {
	var data cardData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererCard, "data payload is not an object")
	}
	if data.Title == "" {
		return nil, missingErr(model.RendererCard, "card has no title")
	}

	return &data, nil
}
