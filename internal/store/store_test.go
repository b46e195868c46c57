package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentsenior/appcore/internal/api"
	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/persist"
)

type stubBackend struct {
	savedFn    func(ctx context.Context) (*domain.SavedCollection, error)
	activityFn func(ctx context.Context) (*domain.Activity, error)
}

func (b *stubBackend) SavedCollection(ctx context.Context) (*domain.SavedCollection, error) {
	return b.savedFn(ctx)
}

func (b *stubBackend) Activity(ctx context.Context) (*domain.Activity, error) {
	return b.activityFn(ctx)
}

func sampleCollection() *domain.SavedCollection {
	return &domain.SavedCollection{
		SavedPYQs:      []domain.ResourceRef{{ID: "pyq_1"}},
		SavedNotes:     []domain.ResourceRef{},
		PurchasedPYQs:  []domain.ResourceRef{},
		PurchasedNotes: []domain.ResourceRef{},
	}
}

func TestPersistAllowListConstant(t *testing.T) {
	// The allow-list is part of the persistence contract: session and saved
	// survive restarts, activity never does.
	assert.True(t, PersistAllowList[SliceSession])
	assert.True(t, PersistAllowList[SliceSaved])
	assert.False(t, PersistAllowList[SliceActivity])
	assert.Len(t, PersistAllowList, 3)
}

func TestFetchSavedReplacesWholesale(t *testing.T) {
	backend := &stubBackend{
		savedFn: func(ctx context.Context) (*domain.SavedCollection, error) {
			return sampleCollection(), nil
		},
	}
	s := New(Options{Backend: backend})
	defer s.Flush()

	// Pre-existing data that must be fully replaced, not merged into.
	s.Dispatch(savedFulfilled{collection: domain.SavedCollection{
		SavedPYQs:  []domain.ResourceRef{{ID: "stale_1"}, {ID: "stale_2"}},
		SavedNotes: []domain.ResourceRef{{ID: "stale_note"}},
	}})

	require.NoError(t, s.FetchSaved(context.Background()))

	saved := s.State().Saved
	assert.False(t, saved.Loading)
	assert.Empty(t, saved.Error)
	require.Len(t, saved.Collection.SavedPYQs, 1)
	assert.Equal(t, "pyq_1", saved.Collection.SavedPYQs[0].ID)
	assert.Empty(t, saved.Collection.SavedNotes)
	assert.Empty(t, saved.Collection.PurchasedPYQs)
	assert.Empty(t, saved.Collection.PurchasedNotes)
}

func TestFetchSavedRejectedRetainsPriorData(t *testing.T) {
	calls := 0
	backend := &stubBackend{
		savedFn: func(ctx context.Context) (*domain.SavedCollection, error) {
			calls++
			if calls == 1 {
				return sampleCollection(), nil
			}
			return nil, &api.Error{Status: 500, Message: "upstream exploded"}
		},
	}
	s := New(Options{Backend: backend})
	defer s.Flush()

	require.NoError(t, s.FetchSaved(context.Background()))
	require.Error(t, s.FetchSaved(context.Background()))

	saved := s.State().Saved
	assert.Equal(t, "upstream exploded", saved.Error)
	assert.False(t, saved.Loading)
	// Prior data retained so transient failures do not blank the UI.
	require.Len(t, saved.Collection.SavedPYQs, 1)
	assert.Equal(t, "pyq_1", saved.Collection.SavedPYQs[0].ID)
}

func TestFetchSavedGenericMessageForNetworkError(t *testing.T) {
	backend := &stubBackend{
		savedFn: func(ctx context.Context) (*domain.SavedCollection, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	s := New(Options{Backend: backend})
	defer s.Flush()

	require.Error(t, s.FetchSaved(context.Background()))
	assert.Equal(t, api.GenericMessage, s.State().Saved.Error)
}

func TestFetchSavedStaleResolutionDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	calls := 0

	backend := &stubBackend{
		savedFn: func(ctx context.Context) (*domain.SavedCollection, error) {
			calls++
			if calls == 1 {
				close(firstStarted)
				<-release
				return &domain.SavedCollection{SavedPYQs: []domain.ResourceRef{{ID: "old"}}}, nil
			}
			return &domain.SavedCollection{SavedPYQs: []domain.ResourceRef{{ID: "new"}}}, nil
		},
	}
	s := New(Options{Backend: backend})
	defer s.Flush()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = s.FetchSaved(context.Background())
	}()

	<-firstStarted
	// Second fetch supersedes the first while it is still in flight.
	require.NoError(t, s.FetchSaved(context.Background()))
	require.Len(t, s.State().Saved.Collection.SavedPYQs, 1)
	assert.Equal(t, "new", s.State().Saved.Collection.SavedPYQs[0].ID)

	// Let the superseded request resolve; its result must be discarded.
	close(release)
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch did not finish")
	}

	assert.Equal(t, "new", s.State().Saved.Collection.SavedPYQs[0].ID)
}

func TestFetchActivityLifecycle(t *testing.T) {
	backend := &stubBackend{
		activityFn: func(ctx context.Context) (*domain.Activity, error) {
			return &domain.Activity{
				RewardBalance: 50,
				Transactions:  []domain.Transaction{{ID: "t1", Points: 50}},
				Products:      []domain.Submission{},
				PYQs:          []domain.Submission{},
				Notes:         []domain.Submission{},
			}, nil
		},
	}
	s := New(Options{Backend: backend})
	defer s.Flush()

	require.NoError(t, s.FetchActivity(context.Background()))

	activity := s.State().Activity
	assert.Equal(t, 50, activity.Activity.RewardBalance)
	require.Len(t, activity.Activity.Transactions, 1)
	assert.False(t, activity.Loading)
}

func TestResetClearsEphemeralSlices(t *testing.T) {
	s := New(Options{})
	defer s.Flush()

	s.Dispatch(SignInSuccess{User: fullUser()})
	s.Dispatch(savedFulfilled{collection: *sampleCollection()})
	s.Dispatch(activityFulfilled{activity: domain.Activity{RewardBalance: 10}})

	s.Reset()

	state := s.State()
	assert.Nil(t, state.Session.User)
	assert.Empty(t, state.Saved.Collection.SavedPYQs)
	assert.Zero(t, state.Activity.Activity.RewardBalance)
}

func TestPersistWritesOnlyAllowListedSlices(t *testing.T) {
	adapter := persist.NewMemory()
	s := New(Options{Adapter: adapter, SnapshotKey: "state"})

	s.Dispatch(SignInSuccess{User: fullUser()})
	s.Dispatch(savedFulfilled{collection: *sampleCollection()})
	s.Dispatch(activityFulfilled{activity: domain.Activity{RewardBalance: 99}})
	s.Flush()

	raw, ok, err := adapter.Get(context.Background(), "state")
	require.NoError(t, err)
	require.True(t, ok)

	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Contains(t, snap, "session")
	assert.Contains(t, snap, "saved")
	assert.NotContains(t, snap, "activity")
	assert.JSONEq(t, `1`, string(snap["schemaVersion"]))

	// Transient flags are not persisted either.
	assert.NotContains(t, string(snap["session"]), "loading")
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	s := New(Options{Adapter: failingAdapter{}})

	s.Dispatch(SignInSuccess{User: fullUser()})
	s.Flush()

	// The dispatch still applied despite the failed write.
	assert.True(t, s.State().Session.Authenticated())
}

type failingAdapter struct{}

func (failingAdapter) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (failingAdapter) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func (failingAdapter) Remove(context.Context, string) error {
	return errors.New("quota exceeded")
}

func TestInitReturnsSameInstance(t *testing.T) {
	first := Init(Options{})
	second := Init(Options{Backend: &stubBackend{}})

	assert.Same(t, first, second)
	assert.Same(t, first, Instance())
}
