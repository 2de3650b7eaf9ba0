package audit

import (
	"context"
	"time"
)

// EventCategory decides retention and routing for an audit event.
type EventCategory string

const (
	// CategoryCompliance covers changes to the user's persisted records.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers screened or blocked input.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine pipeline activity. May be sampled.
	CategoryOperations EventCategory = "operations"
)

// AuditEvent names an action recorded in the trail.
type AuditEvent string

const (
	EventCommandInterpreted AuditEvent = "command_interpreted"
	EventInputSanitized     AuditEvent = "input_sanitized"
	EventDestructiveBlocked AuditEvent = "destructive_blocked"
	EventEntrySaved         AuditEvent = "entry_saved"
	EventEntrySaveFailed    AuditEvent = "entry_save_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEntrySaved:         CategoryCompliance,
	EventInputSanitized:     CategorySecurity,
	EventDestructiveBlocked: CategorySecurity,
	EventCommandInterpreted: CategoryOperations,
	EventEntrySaveFailed:    CategoryOperations,
}

// Category returns the category for this event. Unknown events are operations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted by the command service. It stays transport-agnostic so
// stores can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    string
	RequestID string
	Action    string
	// Subject is the entity the event is about: an entry ID, a result ID or
	// a short description of the screened input.
	Subject string
	Domain  string
	Outcome string
	Reason  string
	// Device is the parsed client label, e.g. "Chrome on macOS".
	Device   string
	ClientIP string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
