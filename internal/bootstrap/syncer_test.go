package bootstrap

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentsenior/appcore/internal/api"
	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/persist"
	"github.com/studentsenior/appcore/internal/store"
)

type fakeBackend struct {
	user        *domain.User
	userErr     error
	userCalls   atomic.Int32
	savedCalls  atomic.Int32
	activeCalls atomic.Int32
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*domain.User, error) {
	f.userCalls.Add(1)
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeBackend) SavedCollection(ctx context.Context) (*domain.SavedCollection, error) {
	f.savedCalls.Add(1)
	col := domain.EmptySavedCollection()
	col.SavedPYQs = []domain.ResourceRef{{ID: "pyq_1"}}
	return &col, nil
}

func (f *fakeBackend) Activity(ctx context.Context) (*domain.Activity, error) {
	f.activeCalls.Add(1)
	act := domain.EmptyActivity()
	act.RewardBalance = 75
	return &act, nil
}

func seedPersistedSession(t *testing.T, adapter persist.Adapter) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"schemaVersion": store.SnapshotSchemaVersion,
		"session": map[string]any{
			"user": map[string]any{"id": "u1", "username": "alice", "email": "alice@campus.edu"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, adapter.Set(context.Background(), "state", data))
}

func TestRunOverwritesSessionWithServerIdentity(t *testing.T) {
	adapter := persist.NewMemory()
	seedPersistedSession(t, adapter)

	backend := &fakeBackend{
		user: &domain.User{ID: "u1", Username: "alice-renamed", Email: "alice@campus.edu"},
	}
	st := store.New(store.Options{Backend: backend, Adapter: adapter, SnapshotKey: "state"})
	defer st.Flush()

	New(st, backend, slog.New(slog.DiscardHandler)).Run(context.Background())

	session := st.State().Session
	require.NotNil(t, session.User)
	assert.Equal(t, "alice-renamed", session.User.Username, "server identity is authoritative")
}

func TestRunSignsOutOnFailedRevalidation(t *testing.T) {
	adapter := persist.NewMemory()
	seedPersistedSession(t, adapter)

	backend := &fakeBackend{userErr: &api.Error{Status: 401, Message: "session expired"}}
	st := store.New(store.Options{Backend: backend, Adapter: adapter, SnapshotKey: "state"})
	defer st.Flush()

	// Rehydration produced an authenticated session from the stale snapshot.
	require.NotNil(t, st.State().Session.User)

	New(st, backend, slog.New(slog.DiscardHandler)).Run(context.Background())

	session := st.State().Session
	assert.Nil(t, session.User, "no identity fields survive a failed re-validation")
	assert.False(t, session.Loading)
	assert.Equal(t, int32(0), backend.savedCalls.Load(), "no data loads after sign-out")
}

func TestRunTriggersDataLoadsOnSuccess(t *testing.T) {
	backend := &fakeBackend{
		user: &domain.User{ID: "u1", Username: "alice", Email: "alice@campus.edu"},
	}
	st := store.New(store.Options{Backend: backend})
	defer st.Flush()

	New(st, backend, slog.New(slog.DiscardHandler)).Run(context.Background())

	state := st.State()
	require.Len(t, state.Saved.Collection.SavedPYQs, 1)
	assert.Equal(t, 75, state.Activity.Activity.RewardBalance)
}

func TestRunExactlyOnce(t *testing.T) {
	backend := &fakeBackend{
		user: &domain.User{ID: "u1", Username: "alice", Email: "alice@campus.edu"},
	}
	st := store.New(store.Options{Backend: backend})
	defer st.Flush()

	syncer := New(st, backend, slog.New(slog.DiscardHandler))
	for i := 0; i < 3; i++ {
		syncer.Run(context.Background())
	}

	assert.Equal(t, int32(1), backend.userCalls.Load())
	assert.Equal(t, int32(1), backend.savedCalls.Load())
	assert.Equal(t, int32(1), backend.activeCalls.Load())
}
