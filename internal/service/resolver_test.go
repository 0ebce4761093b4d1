package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emrgen/shortpage/internal/analytics"
	"github.com/emrgen/shortpage/internal/cache"
	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/render"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/emrgen/shortpage/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// spyStore counts child listings, the redirect fast-path must never load
// children.
type spyStore struct {
	store.Store
	childLists atomic.Int32
}

func (s *spyStore) ListChildren(ctx context.Context, parentID string) ([]*model.Block, error) {
	s.childLists.Add(1)
	return s.Store.ListChildren(ctx, parentID)
}

// panicCache blows up on every read, the resolver must degrade it to an
// error outcome instead of crashing the request.
type panicCache struct {
	cache.Nop
}

func (panicCache) GetBlock(ctx context.Context, slug string) (*model.Block, error) {
	panic("cache gone sideways")
}

func newTestResolver(t *testing.T, s store.Store) (*Resolver, *analytics.Recorder) {
	t.Helper()

	recorder := analytics.NewRecorder(analytics.NewStoreSink(s), 64)
	resolver := NewResolver(s, cache.NewNop(), render.NewRegistry(), recorder, time.Second)

	return resolver, recorder
}

func orderOf(i int) *int {
	return &i
}

func createBlock(t *testing.T, blocks *BlockService, params CreateBlockParams) *model.Block {
	t.Helper()

	block, err := blocks.CreateBlock(context.TODO(), params)
	assert.NoError(t, err)

	return block
}

func TestResolver_RedirectFastPath(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	spy := &spyStore{Store: gormStore}
	resolver, recorder := newTestResolver(t, spy)
	blocks := NewBlockService(gormStore, cache.NewNop())

	block := createBlock(t, blocks, CreateBlockParams{
		Slug:        "go-docs",
		Renderer:    model.RendererRedirect,
		Data:        json.RawMessage(`{"url":"https://go.dev/doc","statusCode":301}`),
		IsPublished: true,
	})

	outcome := resolver.Resolve(context.TODO(), "go-docs", analytics.Event{Referrer: "https://news.example.com"})
	assert.Equal(t, OutcomeRedirect, outcome.Status)
	assert.Equal(t, "https://go.dev/doc", outcome.Redirect.URL)
	assert.Equal(t, 301, outcome.Redirect.StatusCode)

	// children are never loaded on the redirect path
	assert.Equal(t, int32(0), spy.childLists.Load())

	recorder.Close()
	count, err := gormStore.CountClicks(context.TODO(), block.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	clicks, err := gormStore.ListClicks(context.TODO(), block.ID, 10, 0)
	assert.NoError(t, err)
	assert.Equal(t, model.ClickTypeRedirect, clicks[0].Type)
	assert.Equal(t, "https://news.example.com", clicks[0].Referrer)
}

func TestResolver_RenderPageWithChildren(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	blocks := NewBlockService(gormStore, cache.NewNop())

	block := createBlock(t, blocks, CreateBlockParams{
		Slug:        "about",
		Renderer:    model.RendererPage,
		IsPublished: true,
		Children: []ChildParams{
			{Renderer: model.RendererHeading, Data: json.RawMessage(`{"text":"About","level":1}`), DisplayOrder: orderOf(0)},
			{Renderer: model.RendererText, Data: json.RawMessage(`{"text":"hello"}`), DisplayOrder: orderOf(1)},
		},
	})

	outcome := resolver.Resolve(context.TODO(), "about", analytics.Event{})
	assert.Equal(t, OutcomeRendered, outcome.Status)
	assert.Equal(t, model.RendererPage, outcome.Result.Renderer)
	assert.Len(t, outcome.Result.Children, 2)
	assert.Equal(t, model.RendererHeading, outcome.Result.Children[0].Renderer)
	assert.Equal(t, model.RendererText, outcome.Result.Children[1].Renderer)
	assert.Equal(t, 30*time.Minute, outcome.Result.TTL)

	recorder.Close()
	count, err := gormStore.CountClicks(context.TODO(), block.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestResolver_ExplicitZeroOrderBeatsInputPosition(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()
	blocks := NewBlockService(gormStore, cache.NewNop())

	// submitted heading-first, but the explicit orders say text comes first
	createBlock(t, blocks, CreateBlockParams{
		Slug:        "bio",
		Renderer:    model.RendererPage,
		IsPublished: true,
		Children: []ChildParams{
			{Renderer: model.RendererHeading, Data: json.RawMessage(`{"text":"Bio","level":1}`), DisplayOrder: orderOf(1)},
			{Renderer: model.RendererText, Data: json.RawMessage(`{"text":"hello"}`), DisplayOrder: orderOf(0)},
		},
	})

	outcome := resolver.Resolve(context.TODO(), "bio", analytics.Event{})
	assert.Equal(t, OutcomeRendered, outcome.Status)
	assert.Len(t, outcome.Result.Children, 2)
	assert.Equal(t, model.RendererText, outcome.Result.Children[0].Renderer)
	assert.Equal(t, model.RendererHeading, outcome.Result.Children[1].Renderer)

	// same order on every resolve
	again := resolver.Resolve(context.TODO(), "bio", analytics.Event{})
	assert.Equal(t, model.RendererText, again.Result.Children[0].Renderer)
	assert.Equal(t, model.RendererHeading, again.Result.Children[1].Renderer)
}

func TestResolver_UnpublishedInvisible(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()
	blocks := NewBlockService(gormStore, cache.NewNop())

	createBlock(t, blocks, CreateBlockParams{
		Slug:     "draft",
		Renderer: model.RendererCard,
		Data:     json.RawMessage(`{"title":"WIP"}`),
	})

	outcome := resolver.Resolve(context.TODO(), "draft", analytics.Event{})
	assert.Equal(t, OutcomeNotFound, outcome.Status)

	// the admin sees it anyway
	outcome = resolver.ResolveAdmin(context.TODO(), "draft")
	assert.Equal(t, OutcomeRendered, outcome.Status)
}

func TestResolver_AdminPreviewNotCounted(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	blocks := NewBlockService(gormStore, cache.NewNop())

	block := createBlock(t, blocks, CreateBlockParams{
		Slug:        "counted",
		Renderer:    model.RendererCard,
		Data:        json.RawMessage(`{"title":"Card"}`),
		IsPublished: true,
	})

	resolver.ResolveAdmin(context.TODO(), "counted")

	recorder.Close()
	count, err := gormStore.CountClicks(context.TODO(), block.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestResolver_UnknownSlug(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()

	outcome := resolver.Resolve(context.TODO(), "nothing-here", analytics.Event{})
	assert.Equal(t, OutcomeNotFound, outcome.Status)
}

func TestResolver_MalformedDataIsNotFound(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()
	blocks := NewBlockService(gormStore, cache.NewNop())

	createBlock(t, blocks, CreateBlockParams{
		Slug:        "broken-redirect",
		Renderer:    model.RendererRedirect,
		Data:        json.RawMessage(`{"url":"not a url at all"}`),
		IsPublished: true,
	})

	outcome := resolver.Resolve(context.TODO(), "broken-redirect", analytics.Event{})
	assert.Equal(t, OutcomeNotFound, outcome.Status)
	assert.NotEmpty(t, outcome.Reason)
}

func TestResolver_UnknownRendererTag(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()
	blocks := NewBlockService(gormStore, cache.NewNop())

	block := createBlock(t, blocks, CreateBlockParams{
		Slug:        "drifted",
		Renderer:    model.RendererCard,
		Data:        json.RawMessage(`{"title":"Card"}`),
		IsPublished: true,
	})

	// a renderer written to the table before being registered
	block.Renderer = "hologram"
	assert.NoError(t, gormStore.UpdateBlock(context.TODO(), block))

	outcome := resolver.Resolve(context.TODO(), "drifted", analytics.Event{})
	assert.Equal(t, OutcomeNotFound, outcome.Status)
}

func TestResolver_PanicRecovery(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	recorder := analytics.NewRecorder(analytics.NewStoreSink(gormStore), 16)
	defer recorder.Close()

	resolver := NewResolver(gormStore, panicCache{}, render.NewRegistry(), recorder, time.Second)

	outcome := resolver.Resolve(context.TODO(), "anything", analytics.Event{})
	assert.Equal(t, OutcomeError, outcome.Status)
}

func TestResolver_Landing(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	gormStore := store.NewGormStore(tester.TestDB())
	resolver, recorder := newTestResolver(t, gormStore)
	defer recorder.Close()
	blocks := NewBlockService(gormStore, cache.NewNop())

	// nothing designated yet
	_, found := resolver.ResolveLanding(context.TODO(), analytics.Event{})
	assert.False(t, found)

	block := createBlock(t, blocks, CreateBlockParams{
		Slug:        "welcome",
		Renderer:    model.RendererCard,
		Data:        json.RawMessage(`{"title":"Welcome"}`),
		IsPublished: true,
	})
	assert.NoError(t, blocks.SetLandingBlock(context.TODO(), block.ID))

	outcome, found := resolver.ResolveLanding(context.TODO(), analytics.Event{})
	assert.True(t, found)
	assert.Equal(t, OutcomeRendered, outcome.Status)

	// a designation pointing at a deleted block falls back to no landing
	assert.NoError(t, gormStore.SetLandingBlockID(context.TODO(), uuid.New().String()))
	_, found = resolver.ResolveLanding(context.TODO(), analytics.Event{})
	assert.False(t, found)
}
