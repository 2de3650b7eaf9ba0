//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	"lifedash/pkg/platform/sentinel"
	"lifedash/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *Store
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) newEntry(user string, d catalog.Domain) *models.Entry {
	return &models.Entry{
		ID:        uuid.NewString(),
		UserID:    user,
		Domain:    d,
		Fields:    map[string]any{"type": "steps", "steps": 10000.0},
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *RedisStoreSuite) TestCreateAndGet() {
	in := s.newEntry("u1", catalog.Fitness)
	s.Require().NoError(s.store.Create(s.ctx, in))

	got, err := s.store.Get(s.ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(in, got)

	n, err := s.redis.Client.LLen(s.ctx, "entries:u1:fitness").Result()
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *RedisStoreSuite) TestDuplicateIDConflicts() {
	in := s.newEntry("u1", catalog.Fitness)
	s.Require().NoError(s.store.Create(s.ctx, in))
	s.ErrorIs(s.store.Create(s.ctx, in), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestFailedIndexLeavesNoEntry() {
	in := s.newEntry("u1", catalog.Fitness)
	// A string under the index key makes LPUSH fail with WRONGTYPE.
	s.Require().NoError(s.redis.Client.Set(s.ctx, "entries:u1:fitness", "corrupt", 0).Err())

	s.Error(s.store.Create(s.ctx, in))

	_, err := s.store.Get(s.ctx, in.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "the value must not outlive a failed index push")
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestListByUserNewestFirst() {
	first := s.newEntry("u1", catalog.Fitness)
	second := s.newEntry("u1", catalog.Fitness)
	other := s.newEntry("u1", catalog.Health)
	for _, e := range []*models.Entry{first, second, other} {
		s.Require().NoError(s.store.Create(s.ctx, e))
	}

	got, err := s.store.ListByUser(s.ctx, "u1", catalog.Fitness, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(second.ID, got[0].ID)
	s.Equal(first.ID, got[1].ID)

	got, err = s.store.ListByUser(s.ctx, "u1", catalog.Fitness, 1)
	s.Require().NoError(err)
	s.Len(got, 1)

	got, err = s.store.ListByUser(s.ctx, "u9", catalog.Fitness, 0)
	s.Require().NoError(err)
	s.Empty(got)
}
