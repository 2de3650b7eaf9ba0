package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "lifedash/pkg/platform/audit"
)

func TestInMemoryStore_ListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, audit.Event{UserID: "a", Action: "first", Timestamp: base}))
	require.NoError(t, store.Append(ctx, audit.Event{UserID: "b", Action: "third", Timestamp: base.Add(2 * time.Minute)}))
	require.NoError(t, store.Append(ctx, audit.Event{UserID: "a", Action: "second", Timestamp: base.Add(time.Minute)}))

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Action)
	assert.Equal(t, "second", recent[1].Action)
}

func TestInMemoryStore_ListByUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, audit.Event{UserID: "a", Action: "entry_saved"}))

	events, err := store.ListByUser(ctx, "a")
	require.NoError(t, err)
	events[0].Action = "mutated"

	again, err := store.ListByUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "entry_saved", again[0].Action)

	store.Clear()
	empty, err := store.ListByUser(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
