package models

import (
	"time"
)

// Result is the outcome of one sliding-window check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until a slot frees; zero when allowed.
	RetryAfter int
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Limit      int    `json:"limit"`
	RetryAfter int    `json:"retry_after"`
}

// UserKey and IPKey namespace limiter keys so a user id can never collide
// with an address.
func UserKey(userID string) string { return "user:" + userID }

func IPKey(ip string) string { return "ip:" + ip }
