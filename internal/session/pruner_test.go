package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrune(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	stale := store.New()
	require.NoError(t, store.SetToken(ctx, stale, "old-token"))
	fresh := store.New()
	require.NoError(t, store.SetToken(ctx, fresh, "new-token"))

	// Age the first row past the cutoff.
	aged := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.db.Model(&Record{}).
		Where("sid = ?", stale.SID).
		Update("updated_at", aged).Error)

	removed, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	assert.False(t, store.Rehydrate(ctx, stale.SID).LoggedIn())
	assert.True(t, store.Rehydrate(ctx, fresh.SID).LoggedIn())
}

func TestPruneNothingToRemove(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok"))

	removed, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStartPrunerRejectsBadSchedule(t *testing.T) {
	store := newTestStore(t, nil)

	err := store.StartPruner(context.Background(), "not a schedule", time.Hour)
	assert.Error(t, err)
}

func TestStartPrunerStopsOnCancel(t *testing.T) {
	store := newTestStore(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- store.StartPruner(ctx, "0 * * * *", time.Hour)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pruner did not stop on context cancellation")
	}
}
