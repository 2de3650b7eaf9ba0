// Package publisher announces saved entries on the entry.saved topic.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"lifedash/internal/entries/models"
	"lifedash/pkg/requestcontext"
)

// DefaultTopic receives one record per saved entry, keyed by user.
const DefaultTopic = "entry.saved"

// Producer is the transport the publisher writes to.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, headers map[string]string) error
}

type Publisher struct {
	producer Producer
}

func New(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish sends the saved event for entry. Records are keyed by user so one
// user's entries stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, entry *models.Entry) error {
	requestID := requestcontext.RequestID(ctx)
	payload, err := json.Marshal(models.NewSavedEvent(entry, requestID))
	if err != nil {
		return fmt.Errorf("marshal entry event: %w", err)
	}
	headers := map[string]string{
		"domain":     string(entry.Domain),
		"event_type": "entry.saved",
	}
	if requestID != "" {
		headers["request_id"] = requestID
	}
	return p.producer.Produce(ctx, []byte(entry.UserID), payload, headers)
}
