package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"lifedash/internal/ratelimit/metrics"
	"lifedash/internal/ratelimit/models"
	"lifedash/internal/ratelimit/store/memory"
	"lifedash/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("redis down")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func send(h http.Handler, userID, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/commands", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "", "")
	if userID != "" {
		ctx = requestcontext.WithUserID(ctx, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := New(memory.New(), 2, time.Minute, logger, WithMetrics(m)).Limit(ok)

	assert.Equal(t, http.StatusOK, send(h, "alice", "10.0.0.1").Code)
	rec := send(h, "alice", "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = send(h, "alice", "10.0.0.3")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("user")))

	// Same address, different user: keyed by user.
	assert.Equal(t, http.StatusOK, send(h, "bob", "10.0.0.1").Code)
	// Anonymous callers are keyed by address.
	assert.Equal(t, http.StatusOK, send(h, "", "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, send(h, "", "10.0.0.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(h, "", "10.0.0.9").Code)
}

func TestLimit_StoreFailureLetsRequestThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := New(failingStore{}, 1, time.Minute, logger, WithMetrics(m)).Limit(ok)

	assert.Equal(t, http.StatusOK, send(h, "alice", "10.0.0.1").Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors))
}
