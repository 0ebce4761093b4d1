package render

import (
	"encoding/json"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

const defaultGalleryLayout = "grid"

type galleryImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type galleryData struct {
	Images []galleryImage `json:"images"`
	Layout string         `json:"layout"`
}

type GalleryView struct {
	Images []galleryImage `json:"images"`
	Layout string         `json:"layout"`
}

type GalleryRenderer struct{}

func (GalleryRenderer) Kind() string {
	return model.RendererGallery
}

func (GalleryRenderer) CacheTTL() time.Duration {
	return time.Hour
}

func (GalleryRenderer) Render(block *model.Block) (*Result, error) {
	data, err := parseGallery(block)
	if err != nil {
		return nil, err
	}

	layout := data.Layout
	if layout == "" {
		layout = defaultGalleryLayout
	}

	return &Result{
		Content: &GalleryView{Images: data.Images, Layout: layout},
	}, nil
}

func (GalleryRenderer) Metadata(block *model.Block) Metadata {
	data, err := parseGallery(block)
	if err != nil {
		return buildMetadata(block, "", "", "", "website")
	}

	return buildMetadata(block, "", "", data.Images[0].URL, "website")
}

func parseGallery(block *model.Block) (*galleryData, error) {
	var data galleryData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererGallery, "data payload is not an object")
	}
	if len(data.Images) == 0 {
		return nil, missingErr(model.RendererGallery, "gallery has no images")
	}
	for _, image := range data.Images {
		if image.URL == "" {
			return nil, malformedErr(model.RendererGallery, "gallery image without url")
		}
	}

	return &data, nil
}
