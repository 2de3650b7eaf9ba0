//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	"lifedash/pkg/platform/sentinel"
	"lifedash/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	store *Store
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	pg := containers.NewPostgresContainer(s.T())

	pool, err := pgxpool.New(s.ctx, pg.DSN)
	s.Require().NoError(err)
	s.T().Cleanup(pool.Close)
	s.pool = pool

	s.store = New(pool)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE domain_entries")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newEntry(user string, d catalog.Domain, at time.Time) *models.Entry {
	return &models.Entry{
		ID:        uuid.NewString(),
		UserID:    user,
		Domain:    d,
		Fields:    map[string]any{"type": "expense", "amount": 12.5, "recurring": false},
		CreatedAt: at,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	in := s.newEntry("u1", catalog.Financial, at)
	s.Require().NoError(s.store.Create(s.ctx, in))

	got, err := s.store.Get(s.ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(in.ID, got.ID)
	s.Equal(catalog.Financial, got.Domain)
	s.Equal(12.5, got.Fields["amount"])
	s.Equal(false, got.Fields["recurring"])
	s.True(at.Equal(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestDuplicateIDConflicts() {
	in := s.newEntry("u1", catalog.Financial, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, in))
	s.ErrorIs(s.store.Create(s.ctx, in), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Get(s.ctx, "not-a-uuid")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByUserNewestFirst() {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	older := s.newEntry("u1", catalog.Health, base)
	newer := s.newEntry("u1", catalog.Health, base.Add(time.Hour))
	for _, e := range []*models.Entry{older, newer, s.newEntry("u1", catalog.Fitness, base), s.newEntry("u2", catalog.Health, base)} {
		s.Require().NoError(s.store.Create(s.ctx, e))
	}

	got, err := s.store.ListByUser(s.ctx, "u1", catalog.Health, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newer.ID, got[0].ID)
	s.Equal(older.ID, got[1].ID)

	got, err = s.store.ListByUser(s.ctx, "u1", catalog.Health, 1)
	s.Require().NoError(err)
	s.Len(got, 1)
}
