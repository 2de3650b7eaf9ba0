package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := range 3 {
		res, err := s.Allow(ctx, "user:a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		now = now.Add(10 * time.Second)
	}

	res, err := s.Allow(ctx, "user:a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter, "oldest request leaves the window 30s from now")

	now = now.Add(31 * time.Second)
	res, err = s.Allow(ctx, "user:a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	s := New()
	ctx := context.Background()

	res, _ := s.Allow(ctx, "user:a", 1, time.Minute)
	assert.True(t, res.Allowed)
	res, _ = s.Allow(ctx, "user:a", 1, time.Minute)
	assert.False(t, res.Allowed)
	res, _ = s.Allow(ctx, "user:b", 1, time.Minute)
	assert.True(t, res.Allowed)

	require.NoError(t, s.Reset(ctx, "user:a"))
	res, _ = s.Allow(ctx, "user:a", 1, time.Minute)
	assert.True(t, res.Allowed)
}
