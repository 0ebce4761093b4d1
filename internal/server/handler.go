package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/emrgen/shortpage/internal/analytics"
	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/service"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/sirupsen/logrus"
)

type handler struct {
	resolver   *service.Resolver
	blocks     *service.BlockService
	adminToken string
}

func newRouter(resolver *service.Resolver, blocks *service.BlockService, adminToken string) *http.ServeMux {
	h := &handler{
		resolver:   resolver,
		blocks:     blocks,
		adminToken: adminToken,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", h.healthLive)

	mux.HandleFunc("POST /api/v1/blocks", h.admin(h.createBlock))
	mux.HandleFunc("GET /api/v1/blocks", h.admin(h.listBlocks))
	mux.HandleFunc("GET /api/v1/blocks/{id}", h.admin(h.getBlock))
	mux.HandleFunc("PUT /api/v1/blocks/{id}", h.admin(h.updateBlock))
	mux.HandleFunc("DELETE /api/v1/blocks/{id}", h.admin(h.deleteBlock))
	mux.HandleFunc("GET /api/v1/blocks/{id}/stats", h.admin(h.blockStats))
	mux.HandleFunc("PUT /api/v1/blocks/{id}/privacy", h.admin(h.togglePrivacy))
	mux.HandleFunc("PUT /api/v1/blocks/{id}/landing", h.admin(h.setLanding))
	mux.HandleFunc("GET /api/v1/landing", h.admin(h.getLanding))
	mux.HandleFunc("DELETE /api/v1/landing", h.admin(h.removeLanding))
	mux.HandleFunc("GET /api/v1/blocks/{id}/preview", h.admin(h.previewBlock))

	mux.HandleFunc("GET /{slug}", h.resolveSlug)
	mux.HandleFunc("GET /{$}", h.root)

	return mux
}

// admin gates a handler behind the X-Admin-Token header. With no token
// configured the admin api is unreachable.
func (h *handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" || r.Header.Get("X-Admin-Token") != h.adminToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (h *handler) healthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) createBlock(w http.ResponseWriter, r *http.Request) {
	var params service.CreateBlockParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	block, err := h.blocks.CreateBlock(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, block)
}

func (h *handler) listBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.blocks.ListBlocks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blocks)
}

func (h *handler) getBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.blocks.GetBlock(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handler) updateBlock(w http.ResponseWriter, r *http.Request) {
	var params service.UpdateBlockParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	block, err := h.blocks.UpdateBlock(r.Context(), r.PathValue("id"), &params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.blocks.DeleteBlock(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) blockStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blocks.GetBlockStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) togglePrivacy(w http.ResponseWriter, r *http.Request) {
	block, err := h.blocks.TogglePrivacy(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handler) setLanding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.blocks.SetLandingBlock(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	block, err := h.blocks.GetBlock(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handler) getLanding(w http.ResponseWriter, r *http.Request) {
	block, err := h.blocks.GetLandingBlock(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if block == nil {
		writeError(w, http.StatusNotFound, "no landing block set")
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (h *handler) removeLanding(w http.ResponseWriter, r *http.Request) {
	if err := h.blocks.RemoveLandingBlock(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// previewBlock resolves a block for the admin, unpublished blocks included.
// Preview visits are not recorded.
func (h *handler) previewBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.blocks.GetBlock(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	outcome := h.resolver.ResolveAdmin(r.Context(), block.Slug)
	h.writeOutcome(w, r, outcome)
}

func (h *handler) resolveSlug(w http.ResponseWriter, r *http.Request) {
	outcome := h.resolver.Resolve(r.Context(), r.PathValue("slug"), visitFrom(r))
	h.writeOutcome(w, r, outcome)
}

// root serves the landing block when one is designated, otherwise the public
// index listing.
func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	outcome, found := h.resolver.ResolveLanding(r.Context(), visitFrom(r))
	if found {
		h.writeOutcome(w, r, outcome)
		return
	}

	blocks, err := h.blocks.GetPublicBlocks(r.Context())
	if err != nil {
		logrus.Errorf("error listing public blocks: %v", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, blocks)
}

func (h *handler) writeOutcome(w http.ResponseWriter, r *http.Request, outcome service.Outcome) {
	switch outcome.Status {
	case service.OutcomeRedirect:
		http.Redirect(w, r, outcome.Redirect.URL, outcome.Redirect.StatusCode)
	case service.OutcomeRendered:
		if ttl := outcome.Result.TTL; ttl > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
		}
		writeJSON(w, http.StatusOK, outcome.Result)
	case service.OutcomeNotFound:
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	}
}

func visitFrom(r *http.Request) analytics.Event {
	return analytics.Event{
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}
}

// clientIP prefers the first X-Forwarded-For hop, the server is expected to
// sit behind a proxy in production.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrBlockNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrSlugTaken),
		errors.Is(err, service.ErrNotRootBlock),
		errors.Is(err, service.ErrBlockNotPublished),
		errors.Is(err, service.ErrLandingBlockPrivate):
		writeError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logrus.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrEmptySlug) ||
		errors.Is(err, model.ErrSlugTooLong) ||
		errors.Is(err, model.ErrInvalidKind) ||
		errors.Is(err, model.ErrMissingParent) ||
		errors.Is(err, model.ErrMissingRenderer)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
