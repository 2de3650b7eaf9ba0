// Package admin exposes read-only inspection of the audit trail and stored
// entries for operators.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	dErrors "lifedash/pkg/domain-errors"
	audit "lifedash/pkg/platform/audit"
	"lifedash/pkg/platform/httputil"
	"lifedash/pkg/platform/sentinel"
	"lifedash/pkg/requestcontext"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// AuditReader reads the audit trail.
type AuditReader interface {
	ListByUser(ctx context.Context, userID string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// EntryReader reads stored entries.
type EntryReader interface {
	Get(ctx context.Context, id string) (*models.Entry, error)
	List(ctx context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error)
}

type Handler struct {
	audit   AuditReader
	entries EntryReader
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func New(auditReader AuditReader, entries EntryReader, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	return &Handler{audit: auditReader, entries: entries, catalog: cat, logger: logger}
}

// Register mounts the routes. The caller applies the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit", h.HandleListAudit)
	r.Get("/admin/entries", h.HandleListEntries)
	r.Get("/admin/entries/{id}", h.HandleGetEntry)
}

// HandleListAudit handles GET /admin/audit?user_id=&limit=. Without a user
// it returns the most recent events across users.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var events []audit.Event
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		events, err = h.audit.ListByUser(ctx, userID)
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
	} else {
		events, err = h.audit.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditList(events))
}

// HandleListEntries handles GET /admin/entries?user_id=&domain=&limit=.
func (h *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "user_id is required"))
		return
	}
	domain, ok := h.catalog.Normalize(q.Get("domain"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "domain must be one of the catalog domains"))
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.entries.List(ctx, userID, domain, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list entries",
			"error", err,
			"domain", domain,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entries"))
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, &EntriesListResponse{Entries: entries, Total: len(entries)})
}

// HandleGetEntry handles GET /admin/entries/{id}.
func (h *Handler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	entry, err := h.entries.Get(ctx, id)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "entry not found"))
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to get entry",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get entry"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(n, maxLimit), nil
}
