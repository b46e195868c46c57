package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/studentsenior/appcore/internal/domain"
)

// SnapshotSchemaVersion is bumped whenever the persisted shape changes.
// Snapshots carrying any other version are discarded wholesale to defaults.
const SnapshotSchemaVersion = 1

// snapshot is the persisted form of the allow-listed slices. Transient
// fields (loading, error) are never written.
type snapshot struct {
	SchemaVersion int             `json:"schemaVersion"`
	Session       json.RawMessage `json:"session,omitempty"`
	Saved         json.RawMessage `json:"saved,omitempty"`
}

type sessionSnapshot struct {
	User *domain.User `json:"user,omitempty"`
}

type savedSnapshot struct {
	Collection domain.SavedCollection `json:"collection"`
}

// encodeSnapshotLocked serializes the slices the allow-list designates.
// Callers hold mu.
func (s *Store) encodeSnapshotLocked() ([]byte, error) {
	snap := snapshot{SchemaVersion: SnapshotSchemaVersion}

	if PersistAllowList[SliceSession] {
		raw, err := json.Marshal(sessionSnapshot{User: s.state.Session.User})
		if err != nil {
			return nil, err
		}
		snap.Session = raw
	}
	if PersistAllowList[SliceSaved] {
		raw, err := json.Marshal(savedSnapshot{Collection: s.state.Saved.Collection})
		if err != nil {
			return nil, err
		}
		snap.Saved = raw
	}
	// The activity slice is absent from the allow-list and never written.

	return json.Marshal(snap)
}

// rehydrate merges the persisted slices into the initial tree. Any malformed
// portion falls back to that slice's default; rehydration itself never fails.
func (s *Store) rehydrate(ctx context.Context) {
	data, ok, err := s.adapter.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("read state snapshot", slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("malformed state snapshot, using defaults", slog.String("error", err.Error()))
		rehydrateFallbacks.WithLabelValues(string(SliceSession)).Inc()
		rehydrateFallbacks.WithLabelValues(string(SliceSaved)).Inc()
		return
	}
	if snap.SchemaVersion != SnapshotSchemaVersion {
		s.logger.Warn("snapshot schema version mismatch, using defaults",
			slog.Int("got", snap.SchemaVersion),
			slog.Int("want", SnapshotSchemaVersion),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if PersistAllowList[SliceSession] && len(snap.Session) > 0 {
		if session, ok := decodeSessionSnapshot(snap.Session); ok {
			s.state.Session = session
		} else {
			s.logger.Warn("malformed session snapshot, falling back to anonymous")
			rehydrateFallbacks.WithLabelValues(string(SliceSession)).Inc()
		}
	}
	if PersistAllowList[SliceSaved] && len(snap.Saved) > 0 {
		if saved, ok := decodeSavedSnapshot(snap.Saved); ok {
			s.state.Saved = saved
		} else {
			s.logger.Warn("malformed saved snapshot, falling back to empty")
			rehydrateFallbacks.WithLabelValues(string(SliceSaved)).Inc()
		}
	}
}

// decodeSessionSnapshot validates a persisted session. A present identity
// must be complete; a partial one is never trusted.
func decodeSessionSnapshot(raw json.RawMessage) (SessionState, bool) {
	var snap sessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return SessionState{}, false
	}
	if snap.User == nil {
		return defaultSession(), true
	}
	if !snap.User.Complete() {
		return SessionState{}, false
	}
	return SessionState{User: snap.User}, true
}

func decodeSavedSnapshot(raw json.RawMessage) (SavedState, bool) {
	var snap savedSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return SavedState{}, false
	}
	col := snap.Collection
	if col.SavedPYQs == nil {
		col.SavedPYQs = []domain.ResourceRef{}
	}
	if col.SavedNotes == nil {
		col.SavedNotes = []domain.ResourceRef{}
	}
	if col.PurchasedPYQs == nil {
		col.PurchasedPYQs = []domain.ResourceRef{}
	}
	if col.PurchasedNotes == nil {
		col.PurchasedNotes = []domain.ResourceRef{}
	}
	return SavedState{Collection: col}, true
}
