// Package postgres stores entries in the domain_entries table through a
// pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	"lifedash/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS domain_entries (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	domain     TEXT NOT NULL,
	fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS domain_entries_user_domain ON domain_entries (user_id, domain, created_at DESC);
`

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the entries table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate domain_entries: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, entry *models.Entry) error {
	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("entry id %q: %w", entry.ID, sentinel.ErrMalformed)
	}
	fields, err := json.Marshal(entry.Fields)
	if err != nil {
		return fmt.Errorf("marshal entry fields: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO domain_entries (id, user_id, domain, fields, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, entry.UserID, string(entry.Domain), fields, entry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("entry %s: %w", entry.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Entry, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id::text, user_id, domain, fields, created_at
		FROM domain_entries WHERE id = $1`, parsed)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
	}
	return entry, err
}

// ListByUser returns the user's entries in a domain, newest first. A limit
// of zero or less returns all of them.
func (s *Store) ListByUser(ctx context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error) {
	var rowLimit *int
	if limit > 0 {
		rowLimit = &limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, user_id, domain, fields, created_at
		FROM domain_entries
		WHERE user_id = $1 AND domain = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, userID, string(domain), rowLimit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (*models.Entry, error) {
	var (
		entry  models.Entry
		domain string
		fields []byte
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &domain, &fields, &entry.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	entry.Domain = catalog.Domain(domain)
	if err := json.Unmarshal(fields, &entry.Fields); err != nil {
		return nil, fmt.Errorf("decode entry fields: %w", sentinel.ErrMalformed)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}
