package testutil

import (
	"net/http"

	"lifedash/pkg/requestcontext"
)

// WithUserID simulates the auth middleware for an authenticated request.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestID attaches a request ID the way the request ID middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
