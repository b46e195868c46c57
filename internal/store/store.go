package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/studentsenior/appcore/internal/api"
	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/persist"
)

// persistTimeout bounds each background snapshot write.
const persistTimeout = 5 * time.Second

// Backend is the subset of the API client the store's fetch operations need.
type Backend interface {
	SavedCollection(ctx context.Context) (*domain.SavedCollection, error)
	Activity(ctx context.Context) (*domain.Activity, error)
}

// Options configures a Store.
type Options struct {
	Backend Backend
	Adapter persist.Adapter
	Logger  *slog.Logger

	// SnapshotKey is the single namespaced key holding the persisted slices.
	SnapshotKey string
}

// Store is the composed state container. All mutation goes through Dispatch
// or the fetch operations; readers get immutable snapshots from State.
type Store struct {
	mu    sync.Mutex
	state State

	backend Backend
	adapter persist.Adapter
	logger  *slog.Logger
	key     string

	// Monotonic request tokens per async operation. A fetch resolution whose
	// token is no longer the latest issued is discarded, so a slow stale
	// response never clobbers a newer one.
	savedSeq    int64
	activitySeq int64

	writes sync.WaitGroup

	// Snapshot writes carry the same token discipline: writeMu serializes
	// adapter writes and persistSeq tags each encoded snapshot, so a write
	// that has been superseded is skipped instead of moving the persisted
	// state backwards.
	writeMu    sync.Mutex
	persistSeq atomic.Int64
}

// New constructs a store and rehydrates the persisted slices before
// returning, so no caller ever observes a pre-rehydration tree.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Adapter == nil {
		opts.Adapter = persist.NewNoop()
	}
	if opts.SnapshotKey == "" {
		opts.SnapshotKey = "appstate"
	}

	s := &Store{
		state:   defaultState(),
		backend: opts.Backend,
		adapter: opts.Adapter,
		logger:  opts.Logger,
		key:     opts.SnapshotKey,
	}
	s.rehydrate(context.Background())
	return s
}

// State returns the current snapshot. The identity is copied; lists must be
// treated as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies an action synchronously and schedules a snapshot write.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.applyLocked(a)
	s.mu.Unlock()
}

// applyLocked applies the action and notifies persistence. Callers hold mu.
func (s *Store) applyLocked(a Action) {
	a.apply(&s.state)
	dispatchTotal.WithLabelValues(a.name()).Inc()
	s.persistLocked()
}

// persistLocked encodes the allow-listed slices and writes them on a
// background goroutine. The write is fire-and-forget: callers never block on
// it and a failure only costs the convenience cache. A burst of dispatches
// coalesces: only the newest encoded snapshot reaches the adapter.
func (s *Store) persistLocked() {
	data, err := s.encodeSnapshotLocked()
	if err != nil {
		s.logger.Warn("encode state snapshot", slog.String("error", err.Error()))
		return
	}

	seq := s.persistSeq.Add(1)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		// A newer snapshot has been issued; writing this one would regress
		// the persisted state.
		if s.persistSeq.Load() != seq {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		persistTotal.Inc()
		if err := s.adapter.Set(ctx, s.key, data); err != nil {
			persistFailures.Inc()
			s.logger.Warn("persist state snapshot", slog.String("error", err.Error()))
		}
	}()
}

// Flush waits for in-flight snapshot writes, for orderly shutdown.
func (s *Store) Flush() {
	s.writes.Wait()
}

// Reset signs the session out and clears the ephemeral slices. Used on
// explicit logout so no per-user data survives into an anonymous session.
func (s *Store) Reset() {
	s.mu.Lock()
	s.applyLocked(SignOut{})
	s.applyLocked(resetEphemeral{})
	s.mu.Unlock()
}

// FetchSaved re-fetches the saved collection. Safe to invoke repeatedly: the
// result always replaces slice data wholesale, and a superseded in-flight
// request is discarded on arrival.
func (s *Store) FetchSaved(ctx context.Context) error {
	token := s.begin(&s.savedSeq, savedPending{})
	fetchTotal.WithLabelValues(string(SliceSaved), phasePending).Inc()

	col, err := s.backend.SavedCollection(ctx)
	if err != nil {
		if s.finish(&s.savedSeq, token, savedRejected{message: api.UserMessage(err)}) {
			fetchTotal.WithLabelValues(string(SliceSaved), phaseRejected).Inc()
		} else {
			fetchTotal.WithLabelValues(string(SliceSaved), phaseStale).Inc()
		}
		return err
	}

	if s.finish(&s.savedSeq, token, savedFulfilled{collection: *col}) {
		fetchTotal.WithLabelValues(string(SliceSaved), phaseFulfilled).Inc()
	} else {
		fetchTotal.WithLabelValues(string(SliceSaved), phaseStale).Inc()
	}
	return nil
}

// FetchActivity re-fetches the activity/reward summary.
func (s *Store) FetchActivity(ctx context.Context) error {
	token := s.begin(&s.activitySeq, activityPending{})
	fetchTotal.WithLabelValues(string(SliceActivity), phasePending).Inc()

	act, err := s.backend.Activity(ctx)
	if err != nil {
		if s.finish(&s.activitySeq, token, activityRejected{message: api.UserMessage(err)}) {
			fetchTotal.WithLabelValues(string(SliceActivity), phaseRejected).Inc()
		} else {
			fetchTotal.WithLabelValues(string(SliceActivity), phaseStale).Inc()
		}
		return err
	}

	if s.finish(&s.activitySeq, token, activityFulfilled{activity: *act}) {
		fetchTotal.WithLabelValues(string(SliceActivity), phaseFulfilled).Inc()
	} else {
		fetchTotal.WithLabelValues(string(SliceActivity), phaseStale).Inc()
	}
	return nil
}

// begin issues a new request token for the operation guarded by seq and
// applies its pending action.
func (s *Store) begin(seq *int64, pending Action) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*seq++
	token := *seq
	s.applyLocked(pending)
	return token
}

// finish applies the resolution action only when token is still the latest
// issued for the operation. Returns false when the resolution was stale.
func (s *Store) finish(seq *int64, token int64, resolution Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *seq != token {
		s.logger.Debug("discarding stale fetch resolution", slog.String("action", resolution.name()))
		return false
	}
	s.applyLocked(resolution)
	return true
}
