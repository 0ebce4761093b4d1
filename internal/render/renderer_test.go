package render

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func testBlock(renderer, data string) *model.Block {
	block := &model.Block{
		ID:       "b1",
		Slug:     "test-block",
		Kind:     model.KindRoot,
		Renderer: renderer,
		Data:     datatypes.JSON(data),
		Metadata: datatypes.JSON("{}"),
	}

	return block
}

func TestRegistry_UnknownRenderer(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Render(testBlock("hologram", "{}"))
	assert.ErrorIs(t, err, ErrUnknownRenderer)
}

func TestRegistry_RenderRedirect(t *testing.T) {
	registry := NewRegistry()

	result, err := registry.Render(testBlock(model.RendererRedirect, `{"url":"https://example.com/a","statusCode":301}`))
	assert.NoError(t, err)
	assert.Equal(t, model.RendererRedirect, result.Renderer)
	assert.Equal(t, "https://example.com/a", result.Redirect.URL)
	assert.Equal(t, 301, result.Redirect.StatusCode)
	assert.Equal(t, time.Hour, result.TTL)
}

func TestRegistry_RenderChildren(t *testing.T) {
	registry := NewRegistry()

	page := testBlock(model.RendererPage, "{}")
	page.Children = []*model.Block{
		testBlock(model.RendererHeading, `{"text":"Welcome","level":1}`),
		// malformed child is skipped, the composition still renders
		testBlock(model.RendererImage, `{}`),
		testBlock(model.RendererText, `{"text":"hello"}`),
	}

	result, err := registry.Render(page)
	assert.NoError(t, err)
	assert.Len(t, result.Children, 2)
	assert.Equal(t, model.RendererHeading, result.Children[0].Renderer)
	assert.Equal(t, model.RendererText, result.Children[1].Renderer)
}

func TestRedirectRenderer_DefaultStatusCode(t *testing.T) {
	result, err := RedirectRenderer{}.Render(testBlock(model.RendererRedirect, `{"url":"https://example.com"}`))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, result.Redirect.StatusCode)
}

func TestRedirectRenderer_FallbackURLExtraction(t *testing.T) {
	// legacy rows store the target under arbitrary keys
	result, err := RedirectRenderer{}.Render(testBlock(model.RendererRedirect, `{"target":"https://example.com/legacy","note":"not a url"}`))
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/legacy", result.Redirect.URL)
}

func TestRedirectRenderer_MissingURL(t *testing.T) {
	_, err := RedirectRenderer{}.Render(testBlock(model.RendererRedirect, `{"note":"nothing here"}`))

	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, http.StatusNotFound, dataErr.Status)
}

func TestRedirectRenderer_RelativeURL(t *testing.T) {
	_, err := RedirectRenderer{}.Render(testBlock(model.RendererRedirect, `{"url":"/local/path"}`))

	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, http.StatusBadRequest, dataErr.Status)
}

func TestArticleRenderer(t *testing.T) {
	result, err := ArticleRenderer{}.Render(testBlock(model.RendererArticle, `{"title":"Go","content":[{"p":"hi"}]}`))
	assert.NoError(t, err)

	view, ok := result.Content.(*ArticleView)
	assert.True(t, ok)
	assert.Equal(t, "Go", view.Title)
	assert.Len(t, view.Content, 1)

	_, err = ArticleRenderer{}.Render(testBlock(model.RendererArticle, `{"title":"Go","content":[]}`))
	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, http.StatusNotFound, dataErr.Status)
}

func TestImageRenderer_NestedAsset(t *testing.T) {
	result, err := ImageRenderer{}.Render(testBlock(model.RendererImage, `{"asset":{"url":"https://cdn.example.com/a.png","width":800,"height":600,"alt":"a"}}`))
	assert.NoError(t, err)

	view, ok := result.Content.(*ImageView)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.png", view.URL)
	assert.Equal(t, 800, view.Width)
	assert.Equal(t, "a", view.Alt)
}

func TestGalleryRenderer(t *testing.T) {
	result, err := GalleryRenderer{}.Render(testBlock(model.RendererGallery, `{"images":[{"url":"https://cdn.example.com/1.png"}]}`))
	assert.NoError(t, err)

	view, ok := result.Content.(*GalleryView)
	assert.True(t, ok)
	assert.Equal(t, "grid", view.Layout)

	_, err = GalleryRenderer{}.Render(testBlock(model.RendererGallery, `{"images":[{"alt":"no url"}]}`))
	var dataErr *DataError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, http.StatusBadRequest, dataErr.Status)
}

func TestHeadingRenderer_LevelClamp(t *testing.T) {
	result, err := HeadingRenderer{}.Render(testBlock(model.RendererHeading, `{"text":"t","level":9}`))
	assert.NoError(t, err)

	view, ok := result.Content.(*HeadingView)
	assert.True(t, ok)
	assert.Equal(t, 2, view.Level)
}

func TestMetadataFallback(t *testing.T) {
	// data title wins over metadata title
	block := testBlock(model.RendererCard, `{"title":"Card Title","image":"https://cdn.example.com/c.png"}`)
	block.Metadata = datatypes.JSON(`{"title":"Meta Title","description":"from meta"}`)

	meta := CardRenderer{}.Metadata(block)
	assert.Equal(t, "Card Title", meta.Title)
	assert.Equal(t, "from meta", meta.Description)
	assert.Equal(t, "summary_large_image", meta.TwitterCard)

	// metadata title fills in when the payload has none
	block = testBlock(model.RendererText, `{"text":"hi"}`)
	block.Metadata = datatypes.JSON(`{"title":"Meta Title"}`)
	meta = TextRenderer{}.Metadata(block)
	assert.Equal(t, "Meta Title", meta.Title)
	assert.Equal(t, "summary", meta.TwitterCard)

	// generic default when nothing provides a title
	block = testBlock(model.RendererText, `{"text":"hi"}`)
	meta = TextRenderer{}.Metadata(block)
	assert.Equal(t, "shortpage", meta.Title)
}

func TestRendererTTLs(t *testing.T) {
	assert.Equal(t, time.Hour, RedirectRenderer{}.CacheTTL())
	assert.Equal(t, 30*time.Minute, ArticleRenderer{}.CacheTTL())
	assert.Equal(t, 2*time.Hour, ImageRenderer{}.CacheTTL())
	assert.Equal(t, time.Hour, CardRenderer{}.CacheTTL())
	assert.Equal(t, time.Hour, GalleryRenderer{}.CacheTTL())
}

func TestDataError_Unwrap(t *testing.T) {
	err := missingErr(model.RendererCard, "card has no title")
	assert.False(t, errors.Is(err, ErrUnknownRenderer))
	assert.Equal(t, "card: card has no title", err.Error())
}
