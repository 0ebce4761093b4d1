package render

import (
	"encoding/json"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

type imageAsset struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

type imageData struct {
	// URL is the legacy flat field, newer rows nest the media asset.
	URL     string      `json:"url"`
	Asset   *imageAsset `json:"asset"`
	Alt     string      `json:"alt"`
	Caption string      `json:"caption"`
}

type ImageView struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type ImageRenderer struct{}

func (ImageRenderer) Kind() string {
	return model.RendererImage
}

func (ImageRenderer) CacheTTL() time.Duration {
	return 2 * time.Hour
}

func (ImageRenderer) Render(block *model.Block) (*Result, error) {
	data, err := parseImage(block)
	if err != nil {
		return nil, err
	}

	view := &ImageView{
		URL:     data.URL,
		Alt:     data.Alt,
		Caption: data.Caption,
	}
	if data.Asset != nil {
		view.URL = data.Asset.URL
		view.Width = data.Asset.Width
		view.Height = data.Asset.Height
		if view.Alt == "" {
			view.Alt = data.Asset.Alt
		}
	}

	return &Result{Content: view}, nil
}

func (ImageRenderer) Metadata(block *model.Block) Metadata {
	data, err := parseImage(block)
	if err != nil {
		return buildMetadata(block, "", "", "", "website")
	}

	imageURL := data.URL
	if data.Asset != nil && data.Asset.URL != "" {
		imageURL = data.Asset.URL
	}

	return buildMetadata(block, data.Caption, "", imageURL, "website")
}

func parseImage(block *model.Block) (*imageData, error) {
	var data imageData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererImage, "data payload is not an object")
	}
	if data.URL == "" && (data.Asset == nil || data.Asset.URL == "") {
		return nil, missingErr(model.RendererImage, "image has no url")
	}

	return &data, nil
}
