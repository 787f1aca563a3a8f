package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeNotifier struct {
	calls  int
	tokens []string
	err    error
}

func (f *fakeNotifier) Logout(_ context.Context, token string) error {
	f.calls++
	f.tokens = append(f.tokens, token)
	return f.err
}

var testDBCounter int

func newTestStore(t *testing.T, notifier LogoutNotifier) *Store {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:sessions_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(db, notifier, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestNewSession(t *testing.T) {
	store := newTestStore(t, nil)

	sess := store.New()
	assert.Len(t, sess.SID, 26)
	assert.True(t, sess.Initialized)
	assert.False(t, sess.LoggedIn())

	other := store.New()
	assert.NotEqual(t, sess.SID, other.SID)
}

func TestRecordColumnNames(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok"))

	// Raw queries in the store address the key column as sid; the
	// migrated model must map to exactly that name, not a derived one.
	assert.True(t, store.db.Migrator().HasColumn(&Record{}, "sid"))

	var count int64
	require.NoError(t, store.db.Raw(
		"SELECT COUNT(*) FROM sessions WHERE sid = ?", sess.SID).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPersistAndRehydrate(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok123"))
	require.NoError(t, store.SetUser(ctx, sess, User{
		ID:             7,
		Username:       "alice",
		Email:          "alice@example.com",
		FavoriteGenres: []string{"Drama"},
	}))

	got := store.Rehydrate(ctx, sess.SID)
	assert.True(t, got.Initialized)
	assert.True(t, got.LoggedIn())
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, "alice@example.com", got.User.Email)
	assert.Equal(t, []string{"Drama"}, got.User.FavoriteGenres)
}

func TestRehydrateUnknownSID(t *testing.T) {
	store := newTestStore(t, nil)

	got := store.Rehydrate(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.True(t, got.Initialized)
	assert.False(t, got.LoggedIn())
	assert.Empty(t, got.Token)
	assert.Empty(t, got.User.Username)
}

func TestSetUserReplacesWholesale(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetUser(ctx, sess, User{Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, store.SetUser(ctx, sess, User{Username: "alice"}))

	got := store.Rehydrate(ctx, sess.SID)
	assert.Equal(t, "alice", got.User.Username)
	assert.Empty(t, got.User.Email, "SetUser must replace, not merge")
}

func TestClearAuth(t *testing.T) {
	notifier := &fakeNotifier{}
	store := newTestStore(t, notifier)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok123"))
	require.NoError(t, store.SetUser(ctx, sess, User{Username: "alice"}))
	sid := sess.SID

	store.ClearAuth(ctx, sess)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, []string{"tok123"}, notifier.tokens)
	assert.Empty(t, sess.Token)
	assert.Equal(t, User{}, sess.User)
	assert.True(t, sess.Initialized)

	got := store.Rehydrate(ctx, sid)
	assert.False(t, got.LoggedIn(), "row should be gone after ClearAuth")
}

func TestClearAuthSurvivesNotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("backend down")}
	store := newTestStore(t, notifier)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok123"))
	sid := sess.SID

	store.ClearAuth(ctx, sess)

	assert.Empty(t, sess.Token, "local wipe must run even when backend logout fails")
	assert.False(t, store.Rehydrate(ctx, sid).LoggedIn())
}

func TestClearAuthIdempotent(t *testing.T) {
	notifier := &fakeNotifier{}
	store := newTestStore(t, notifier)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.SetToken(ctx, sess, "tok123"))

	store.ClearAuth(ctx, sess)
	store.ClearAuth(ctx, sess)
	store.ClearAuth(ctx, sess)

	// Only the first call still held a token to revoke.
	assert.Equal(t, 1, notifier.calls)
	assert.Empty(t, sess.Token)
	assert.True(t, sess.Initialized)
}

func TestClearAuthLoggedOutSession(t *testing.T) {
	notifier := &fakeNotifier{}
	store := newTestStore(t, notifier)

	sess := &Session{Initialized: true}
	store.ClearAuth(context.Background(), sess)

	assert.Zero(t, notifier.calls)
	assert.Empty(t, sess.Token)
}
