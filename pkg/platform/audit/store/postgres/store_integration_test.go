//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "lifedash/pkg/platform/audit"
	"lifedash/pkg/testutil/containers"
)

func TestStore_AppendAndList(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	db, err := sql.Open("postgres", pg.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	store := New(db)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "migration is idempotent")

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, audit.Event{
		Timestamp: base, UserID: "user-1", Action: string(audit.EventEntrySaved),
		Subject: "entry-1", Domain: "health", Device: "Chrome on macOS",
	}))
	require.NoError(t, store.Append(ctx, audit.Event{
		Timestamp: base.Add(time.Minute), UserID: "user-1", Action: string(audit.EventDestructiveBlocked),
		Reason: "confirmation required",
	}))
	require.NoError(t, store.Append(ctx, audit.Event{
		Timestamp: base.Add(2 * time.Minute), UserID: "user-2", Action: string(audit.EventCommandInterpreted),
	}))

	events, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, "Chrome on macOS", events[0].Device)
	assert.Equal(t, audit.CategorySecurity, events[1].Category)

	recent, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "user-2", recent[0].UserID)
}
