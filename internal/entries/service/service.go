// Package service turns command results into stored entries. It implements
// the command pipeline's entry repository port.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/metrics"
	"lifedash/internal/entries/models"
	"lifedash/pkg/requestcontext"
)

// Store persists entries.
type Store interface {
	Create(ctx context.Context, entry *models.Entry) error
	Get(ctx context.Context, id string) (*models.Entry, error)
	ListByUser(ctx context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error)
}

// Publisher announces saved entries.
type Publisher interface {
	Publish(ctx context.Context, entry *models.Entry) error
}

type Service struct {
	store     Store
	catalog   *catalog.Catalog
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	newID     func() string
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator replaces random UUIDs, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

func New(store Store, cat *catalog.Catalog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("entry store is required")
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	s := &Service{
		store:   store,
		catalog: cat,
		logger:  slog.Default(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save stores data as a new entry and returns its id. Publishing the
// entry.saved event is best effort: the entry is already durable, so a
// failed publish is logged and counted but not returned.
func (s *Service) Save(ctx context.Context, userID string, domain catalog.Domain, data map[string]any) (string, error) {
	if !s.catalog.Has(domain) {
		return "", fmt.Errorf("save entry: unknown domain %q", domain)
	}
	fields := make(map[string]any, len(data))
	for k, v := range data {
		fields[k] = v
	}
	entry := &models.Entry{
		ID:        s.newID(),
		UserID:    userID,
		Domain:    domain,
		Fields:    fields,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}

	start := time.Now()
	err := s.store.Create(ctx, entry)
	s.metrics.ObserveSaveLatency(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}
	s.metrics.IncrementSaved(string(domain))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, entry); err != nil {
			s.metrics.IncrementPublishFailure()
			s.logger.WarnContext(ctx, "failed to publish entry event",
				"request_id", requestcontext.RequestID(ctx),
				"entry_id", entry.ID,
				"domain", domain,
				"error", err,
			)
		}
	}
	return entry.ID, nil
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.store.Get(ctx, id)
}

// List returns a user's most recent entries in a domain.
func (s *Service) List(ctx context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error) {
	return s.store.ListByUser(ctx, userID, domain, limit)
}
