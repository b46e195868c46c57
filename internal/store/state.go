// Package store implements the composed application state: independent
// slices with synchronous reducers and asynchronous backend fetches, a
// persistence allow-list, snapshot rehydration, and a process-wide singleton
// container.
package store

import (
	"github.com/studentsenior/appcore/internal/domain"
)

// Slice names the independently addressable subtrees of application state.
type Slice string

const (
	SliceSession  Slice = "session"
	SliceSaved    Slice = "saved"
	SliceActivity Slice = "activity"
)

// PersistAllowList designates which slices are written to and read from the
// persistence adapter. The activity slice is deliberately ephemeral: it must
// be re-fetched on every mount.
var PersistAllowList = map[Slice]bool{
	SliceSession:  true,
	SliceSaved:    true,
	SliceActivity: false,
}

// SessionState is the auth slice. User is either fully populated or nil;
// Loading and Error are transient and never persisted.
type SessionState struct {
	User    *domain.User `json:"user,omitempty"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
}

// Authenticated reports whether a complete identity is present.
func (s SessionState) Authenticated() bool {
	return s.User.Complete()
}

// SavedState is the saved-collection slice.
type SavedState struct {
	Collection domain.SavedCollection `json:"collection"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
}

// ActivityState is the activity/reward slice.
type ActivityState struct {
	Activity domain.Activity `json:"activity"`
	Loading  bool            `json:"loading"`
	Error    string          `json:"error,omitempty"`
}

// State is the composed tree of all slices.
type State struct {
	Session  SessionState  `json:"session"`
	Saved    SavedState    `json:"saved"`
	Activity ActivityState `json:"activity"`
}

func defaultSession() SessionState {
	return SessionState{}
}

func defaultSaved() SavedState {
	return SavedState{Collection: domain.EmptySavedCollection()}
}

func defaultActivity() ActivityState {
	return ActivityState{Activity: domain.EmptyActivity()}
}

func defaultState() State {
	return State{
		Session:  defaultSession(),
		Saved:    defaultSaved(),
		Activity: defaultActivity(),
	}
}

// clone returns a snapshot safe to hand to readers. The identity is copied;
// list contents are shared because reducers only ever replace them wholesale.
// Callers must treat the snapshot as read-only.
func (s State) clone() State {
	if s.Session.User != nil {
		u := *s.Session.User
		s.Session.User = &u
	}
	return s
}
