package httputil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lifedash/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		_, ok := body["error_description"]
		assert.False(t, ok, "error_description must be omitted for internal errors")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, io.ErrUnexpectedEOF)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

type pingRequest struct {
	Name string `json:"name"`
}

func (p *pingRequest) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	decode := func(body string, limit int64) (*pingRequest, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		req, _ := DecodeAndPrepare[pingRequest](w, r, logger, r.Context(), "req-1")
		return req, w
	}

	t.Run("valid body is normalized", func(t *testing.T) {
		req, w := decode(`{"name":"  ada "}`, 0)
		require.NotNil(t, req)
		assert.Equal(t, "ada", req.Name)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		req, w := decode(`{"name":"  "}`, 0)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
	})

	t.Run("malformed json", func(t *testing.T) {
		req, w := decode(`{"name":`, 0)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req, w := decode(`{"name":"a","admin":true}`, 0)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		req, w := decode(``, 0)
		assert.Nil(t, req)
		assert.Contains(t, w.Body.String(), "request body is required")
	})

	t.Run("body over limit", func(t *testing.T) {
		req, w := decode(`{"name":"`+strings.Repeat("x", 64)+`"}`, 16)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
