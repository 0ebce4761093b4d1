package service

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/shortpage/internal/analytics"
	"github.com/emrgen/shortpage/internal/cache"
	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/render"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
)

const defaultResolveTimeout = 5 * time.Second

type OutcomeStatus int

const (
	OutcomeNotFound OutcomeStatus = iota
	OutcomeRedirect
	OutcomeRendered
	OutcomeError
)

// Outcome is the terminal result of resolving one slug. The boundary layer
// maps it onto an HTTP response, nothing below the resolver throws past it.
type Outcome struct {
	Status   OutcomeStatus
	Redirect *render.Redirect
	Result   *render.Result
	Reason   string
}

func notFoundOutcome(reason string) Outcome {
	return Outcome{Status: OutcomeNotFound, Reason: reason}
}

func errorOutcome(reason string) Outcome {
	return Outcome{Status: OutcomeError, Reason: reason}
}

// NewResolver creates a new Resolver.
func NewResolver(store store.Store, blockCache cache.BlockCache, registry *render.Registry, recorder *analytics.Recorder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	return &Resolver{
		store:    store,
		cache:    blockCache,
		registry: registry,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Resolver turns a slug into a render outcome: lookup, redirect fast-path,
// tree assembly, renderer dispatch, async click recording.
type Resolver struct {
	store    store.Store
	cache    cache.BlockCache
	registry *render.Registry
	recorder *analytics.Recorder
	timeout  time.Duration
}

// Resolve resolves a slug for the public audience, unpublished blocks stay
// invisible. The visit fields feed the click event recorded for the block.
func (r *Resolver) Resolve(ctx context.Context, slug string, visit analytics.Event) Outcome {
	return r.resolve(ctx, slug, visit, false)
}

// ResolveAdmin resolves a slug including unpublished blocks. Admin traffic
// is never recorded as clicks.
func (r *Resolver) ResolveAdmin(ctx context.Context, slug string) Outcome {
	return r.resolve(ctx, slug, analytics.Event{}, true)
}

// ResolveLanding resolves the designated landing block, if any.
func (r *Resolver) ResolveLanding(ctx context.Context, visit analytics.Event) (Outcome, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	blockID, err := r.store.GetLandingBlockID(ctx)
	if errors.Is(err, store.ErrLandingNotSet) {
		return Outcome{}, false
	}
	if err != nil {
		logrus.Errorf("landing block lookup failed: %v", err)
		return errorOutcome("store unavailable"), true
	}

	block, err := r.store.GetBlock(ctx, blockID)
	if errors.Is(err, store.ErrBlockNotFound) {
		// stale designation, the block was deleted out from under it
		return Outcome{}, false
	}
	if err != nil {
		logrus.Errorf("landing block lookup failed: %v", err)
		return errorOutcome("store unavailable"), true
	}

	return r.resolveBlock(ctx, block, visit, false), true
}

func (r *Resolver) resolve(ctx context.Context, slug string, visit analytics.Event, includeUnpublished bool) (outcome Outcome) {
	// nothing below the resolver may escape to the boundary layer
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("panic resolving %q: %v", slug, rec)
			outcome = errorOutcome("internal error")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	block, err := r.lookup(ctx, slug)
	if errors.Is(err, store.ErrBlockNotFound) {
		return notFoundOutcome("no such slug")
	}
	if err != nil {
		logrus.Errorf("block lookup for %q failed: %v", slug, err)
		return errorOutcome("store unavailable")
	}

	return r.resolveBlock(ctx, block, visit, includeUnpublished)
}

func (r *Resolver) resolveBlock(ctx context.Context, block *model.Block, visit analytics.Event, includeUnpublished bool) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("panic rendering %q: %v", block.Slug, rec)
			outcome = errorOutcome("internal error")
		}
	}()

	if !block.IsPublished && !includeUnpublished {
		return notFoundOutcome("no such slug")
	}

	// redirect fast-path: children are never loaded, redirect latency is the
	// primary non-functional requirement
	if block.Renderer == model.RendererRedirect {
		result, err := r.registry.Render(block)
		if err != nil {
			return renderFailure(block, err)
		}

		if !includeUnpublished {
			visit.Type = model.ClickTypeRedirect
			r.recorder.Record(block.ID, visit)
		}

		return Outcome{Status: OutcomeRedirect, Redirect: result.Redirect, Result: result}
	}

	if block.Kind == model.KindRoot {
		if err := r.loadChildren(ctx, block); err != nil {
			logrus.Errorf("loading children of %q failed: %v", block.Slug, err)
			return errorOutcome("store unavailable")
		}
	}

	result, err := r.registry.Render(block)
	if err != nil {
		return renderFailure(block, err)
	}

	// admin previews are not audience traffic, they never count
	if !includeUnpublished {
		visit.Type = model.ClickTypeView
		r.recorder.Record(block.ID, visit)
	}

	return Outcome{Status: OutcomeRendered, Result: result}
}

// lookup finds the block for a slug, cache first. Cache failures degrade to
// a store read, they are never fatal.
func (r *Resolver) lookup(ctx context.Context, slug string) (*model.Block, error) {
	cached, err := r.cache.GetBlock(ctx, slug)
	if err != nil {
		logrus.Warnf("block cache get for %q failed: %v", slug, err)
	}
	if cached != nil {
		return cached, nil
	}

	block, err := r.store.GetBlockBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetBlock(ctx, block); err != nil {
		logrus.Warnf("block cache set for %q failed: %v", slug, err)
	}

	return block, nil
}

// loadChildren attaches the ordered child sequence, recursing until a block
// reports no children. Depth is one level in practice, the loader does not
// assume it.
func (r *Resolver) loadChildren(ctx context.Context, block *model.Block) error {
	children, err := r.store.ListChildren(ctx, block.ID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := r.loadChildren(ctx, child); err != nil {
			return err
		}
	}

	block.Children = children

	return nil
}

func renderFailure(block *model.Block, err error) Outcome {
	var dataErr *render.DataError

	switch {
	case errors.Is(err, render.ErrUnknownRenderer):
		// likely data-model drift: a renderer tag written before being
		// registered, keep it loud in the logs
		logrus.Errorf("no renderer registered for tag %q on block %s", block.Renderer, block.Slug)
		return notFoundOutcome("no such slug")
	case errors.As(err, &dataErr):
		logrus.Warnf("block %s failed %s validation: %s", block.Slug, dataErr.Renderer, dataErr.Reason)
		return notFoundOutcome(dataErr.Reason)
	default:
		logrus.Errorf("rendering block %s failed: %v", block.Slug, err)
		return errorOutcome("render failed")
	}
}
