package admin

import (
	"time"

	"lifedash/internal/entries/models"
	audit "lifedash/pkg/platform/audit"
)

// AuditEventResponse is the HTTP response DTO for one audit event.
type AuditEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// AuditListResponse wraps audit events for HTTP response.
type AuditListResponse struct {
	Events []AuditEventResponse `json:"events"`
	Total  int                  `json:"total"`
}

// EntriesListResponse wraps entries for HTTP response.
type EntriesListResponse struct {
	Entries []*models.Entry `json:"entries"`
	Total   int             `json:"total"`
}

func toAuditList(events []audit.Event) *AuditListResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Timestamp: e.Timestamp,
			Category:  string(e.Category),
			Action:    e.Action,
			UserID:    e.UserID,
			RequestID: e.RequestID,
			Subject:   e.Subject,
			Domain:    e.Domain,
			Outcome:   e.Outcome,
			Reason:    e.Reason,
			Device:    e.Device,
		})
	}
	return &AuditListResponse{Events: out, Total: len(out)}
}
