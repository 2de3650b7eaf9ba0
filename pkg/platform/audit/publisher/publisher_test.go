package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "lifedash/pkg/platform/audit"
	"lifedash/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{UserID: "user-1", Action: string(audit.EventEntrySaved)})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventEntrySaved), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			UserID: "user-1",
			Action: string(audit.EventCommandInterpreted),
		}))
	}
	pub.Close()

	events, err := store.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDoesNotPanic(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{UserID: "user-1", Action: string(audit.EventEntrySaved)})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventEntrySaved)})
	assert.ErrorIs(t, err, ErrBufferFull)
}

func TestPublisher_CancelledContextAsync(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pub.Emit(ctx, audit.Event{Action: string(audit.EventEntrySaved)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_Timestamps(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sets missing timestamp from clock", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x"}))

		events, err := pub.List(context.Background(), "u")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, fixed, events[0].Timestamp)
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)
		custom := fixed.Add(-time.Hour)
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u", Action: "x", Timestamp: custom}))

		events, err := pub.List(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

func TestPublisher_SamplingOnlyTouchesOperations(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithSampler(NewSampler(0)))
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u", Action: string(audit.EventCommandInterpreted)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u", Action: string(audit.EventInputSanitized)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: "u", Action: string(audit.EventEntrySaved)}))

	events, err := pub.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventInputSanitized), events[0].Action)
	assert.Equal(t, string(audit.EventEntrySaved), events[1].Action)
}

func TestSampler_Rates(t *testing.T) {
	s := NewSampler(1.5)
	s.roll = func() float64 { return 0.5 }
	assert.True(t, s.ShouldSample("anything"), "rate clamps to 1")

	s.SetRate("command_interpreted", 0.25)
	assert.False(t, s.ShouldSample("command_interpreted"))
	s.SetRate("command_interpreted", -1)
	assert.False(t, s.ShouldSample("command_interpreted"))
}
