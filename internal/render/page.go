package render

import (
	"encoding/json"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

// Structural renderers. They carry no resolution-critical logic, a page is
// its ordered child sequence and heading/text blocks only appear inside one.

const defaultPageLayout = "stack"

type pageData struct {
	Layout string `json:"layout"`
}

type PageView struct {
	Layout string `json:"layout"`
}

type PageRenderer struct{}

func (PageRenderer) Kind() string {
	return model.RendererPage
}

func (PageRenderer) CacheTTL() time.Duration {
	return 30 * time.Minute
}

func (PageRenderer) Render(block *model.Block) (*Result, error) {
	var data pageData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererPage, "data payload is not an object")
	}

	layout := data.Layout
	if layout == "" {
		layout = defaultPageLayout
	}

	return &Result{Content: &PageView{Layout: layout}}, nil
}

func (PageRenderer) Metadata(block *model.Block) Metadata {
	return buildMetadata(block, "", "", "", "website")
}

type headingData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type HeadingView struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type HeadingRenderer struct{}

func (HeadingRenderer) Kind() string {
	return model.RendererHeading
}

func (HeadingRenderer) CacheTTL() time.Duration {
	return time.Hour
}

func (HeadingRenderer) Render(block *model.Block) (*Result, error) {
	var data headingData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererHeading, "data payload is not an object")
	}

	level := data.Level
	if level < 1 || level > 6 {
		level = 2
	}

	return &Result{Content: &HeadingView{Text: data.Text, Level: level}}, nil
}

func (HeadingRenderer) Metadata(block *model.Block) Metadata {
	return buildMetadata(block, "", "", "", "website")
}

type textData struct {
	Text string `json:"text"`
}

type TextView struct {
	Text string `json:"text"`
}

type TextRenderer struct{}

func (TextRenderer) Kind() string {
	return model.RendererText
}

func (TextRenderer) CacheTTL() time.Duration {
	return time.Hour
}

func (TextRenderer) Render(block *model.Block) (*Result, error) {
	var data textData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererText, "data payload is not an object")
	}

	return &Result{Content: &TextView{Text: data.Text}}, nil
}

func (TextRenderer) Metadata(block *model.Block) Metadata {
	return buildMetadata(block, "", "", "", "website")
}
