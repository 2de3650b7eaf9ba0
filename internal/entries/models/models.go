// Package models holds the persisted form of a saved command result.
package models

import (
	"time"

	"lifedash/internal/catalog"
)

// Entry is one record in a life-area domain.
type Entry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Domain    catalog.Domain `json:"domain"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Clone returns a copy whose Fields map is not shared. Field values are
// scalars so a shallow map copy is enough.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Fields != nil {
		out.Fields = make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}

// SavedEvent is published after an entry is stored.
type SavedEvent struct {
	EntryID   string         `json:"entryId"`
	UserID    string         `json:"userId"`
	Domain    catalog.Domain `json:"domain"`
	Type      string         `json:"type,omitempty"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"createdAt"`
	RequestID string         `json:"requestId,omitempty"`
}

// NewSavedEvent builds the event for e.
func NewSavedEvent(e *Entry, requestID string) SavedEvent {
	kind, _ := e.Fields["type"].(string)
	return SavedEvent{
		EntryID:   e.ID,
		UserID:    e.UserID,
		Domain:    e.Domain,
		Type:      kind,
		Fields:    e.Fields,
		CreatedAt: e.CreatedAt,
		RequestID: requestID,
	}
}
