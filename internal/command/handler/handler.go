// Package handler exposes the command pipeline over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifedash/internal/catalog"
	"lifedash/internal/command/models"
	"lifedash/pkg/platform/httputil"
	"lifedash/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for command interpretation.
type Service interface {
	Interpret(ctx context.Context, req models.Request) *models.Response
}

// Handler wires command endpoints to the command service.
type Handler struct {
	service Service
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New constructs a command handler with its dependencies.
func New(service Service, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		catalog: cat,
		logger:  logger,
	}
}

// Register mounts command endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/commands", h.HandleCommand)
	r.Get("/domains", h.HandleDomains)
}

// HandleCommand handles POST /commands. Pipeline failures are a 200 with a
// typed outcome; only transport errors produce an error envelope.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CommandRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	resp := h.service.Interpret(ctx, req.ToModel(requestcontext.UserID(ctx)))

	h.logger.DebugContext(ctx, "command handled",
		"request_id", requestID,
		"outcome", resp.Outcome,
		"dry_run", req.DryRun,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResponse(resp))
}

// HandleDomains handles GET /domains.
func (h *Handler) HandleDomains(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, DomainsResponse{Domains: h.catalog.Domains()})
}
