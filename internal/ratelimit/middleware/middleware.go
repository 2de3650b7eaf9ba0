// Package middleware throttles command submissions per caller.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"lifedash/internal/ratelimit/metrics"
	"lifedash/internal/ratelimit/models"
	"lifedash/pkg/platform/httputil"
	"lifedash/pkg/requestcontext"
)

// Store is a sliding-window limiter backend.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Middleware struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) { mw.metrics = m }
}

func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit keys authenticated callers by user id and everyone else by client
// address. It must run after the auth and client metadata middleware. A
// limiter failure lets the request through.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		key, scope := models.IPKey(requestcontext.ClientIP(ctx)), "ip"
		if userID := requestcontext.UserID(ctx); userID != "" {
			key, scope = models.UserKey(userID), "user"
		}

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.metrics.IncrementErrors()
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"scope", scope,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.IncrementRejected(scope)
			m.logger.WarnContext(ctx, "command rate limit exceeded",
				"scope", scope,
				"request_id", requestcontext.RequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many commands. Please try again later.",
				Limit:      result.Limit,
				RetryAfter: result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
