package handler

import (
	"strings"
	"time"
	"unicode/utf8"

	"lifedash/internal/command/models"
	dErrors "lifedash/pkg/domain-errors"
)

// MaxMessageRunes bounds the accepted message. Anything between the
// sanitizer ceiling and this bound is truncated and flagged, not refused.
const MaxMessageRunes = 10000

// CommandRequest is the HTTP request body for POST /commands.
type CommandRequest struct {
	Message     string       `json:"message"`
	UserContext *UserContext `json:"userContext,omitempty"`
	UserTime    *UserTime    `json:"userTime,omitempty"`
	Confirmed   bool         `json:"confirmed,omitempty"`
	DryRun      bool         `json:"dryRun,omitempty"`
}

// UserContext carries caller details when the request is not authenticated.
type UserContext struct {
	UserID      string            `json:"userId,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// UserTime is the caller's local clock.
type UserTime struct {
	LocalHour *int   `json:"localHour,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// The message itself is not trimmed: empty-after-sanitizing is a pipeline
// outcome, not a transport error.
func (r *CommandRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if utf8.RuneCountInString(r.Message) > MaxMessageRunes {
		return dErrors.New(dErrors.CodeValidation, "message is too long")
	}

	if r.UserContext != nil {
		r.UserContext.UserID = strings.TrimSpace(r.UserContext.UserID)
		if len(r.UserContext.UserID) > 128 {
			return dErrors.New(dErrors.CodeValidation, "userContext.userId must be at most 128 characters")
		}
	}

	if r.UserTime != nil {
		if h := r.UserTime.LocalHour; h != nil && (*h < 0 || *h > 23) {
			return dErrors.New(dErrors.CodeValidation, "userTime.localHour must be between 0 and 23")
		}
		r.UserTime.Timezone = strings.TrimSpace(r.UserTime.Timezone)
		if r.UserTime.Timezone != "" {
			if _, err := time.LoadLocation(r.UserTime.Timezone); err != nil {
				return dErrors.New(dErrors.CodeValidation, "userTime.timezone is not a known time zone")
			}
		}
	}
	return nil
}

// ToModel builds the pipeline request. An authenticated user wins over the
// body's userContext.
func (r *CommandRequest) ToModel(authenticatedUser string) models.Request {
	req := models.Request{
		Message:   r.Message,
		UserID:    authenticatedUser,
		Confirmed: r.Confirmed,
		DryRun:    r.DryRun,
	}
	if r.UserContext != nil {
		if req.UserID == "" {
			req.UserID = r.UserContext.UserID
		}
		req.Preferences = r.UserContext.Preferences
	}
	if req.UserID == "" {
		req.UserID = AnonymousUser
	}
	if r.UserTime != nil {
		req.UserTime = &models.UserTime{LocalHour: r.UserTime.LocalHour, Timezone: r.UserTime.Timezone}
	}
	return req
}

// AnonymousUser owns entries saved without any user identity.
const AnonymousUser = "anonymous"
