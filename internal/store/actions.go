package store

import (
	"github.com/studentsenior/appcore/internal/domain"
)

// Action is a synchronous state mutation applied through Store.Dispatch.
type Action interface {
	name() string
	apply(*State)
}

// SignInSuccess installs a server-acknowledged identity, entering the
// authenticated state and clearing any error. An incomplete identity is never
// stored: it clears the session instead, so the slice can not hold a partial
// identity.
type SignInSuccess struct {
	User domain.User
}

func (SignInSuccess) name() string { return "session/signInSuccess" }

func (a SignInSuccess) apply(s *State) {
	if !a.User.Complete() {
		s.Session = defaultSession()
		return
	}
	u := a.User
	s.Session = SessionState{User: &u}
}

// SignOut clears identity, loading, and error unconditionally.
type SignOut struct{}

func (SignOut) name() string { return "session/signOut" }

func (SignOut) apply(s *State) {
	s.Session = defaultSession()
}

// UpdateStart marks an in-flight profile update. The identity is retained
// while loading. A no-op when anonymous.
type UpdateStart struct{}

func (UpdateStart) name() string { return "session/updateStart" }

func (UpdateStart) apply(s *State) {
	if s.Session.User == nil {
		return
	}
	s.Session.Loading = true
	s.Session.Error = ""
}

// UpdateSuccess merges the edited fields into the existing identity and
// clears the loading flag. A no-op when anonymous.
type UpdateSuccess struct {
	Update domain.ProfileUpdate
}

func (UpdateSuccess) name() string { return "session/updateSuccess" }

func (a UpdateSuccess) apply(s *State) {
	if s.Session.User == nil {
		return
	}
	merged := a.Update.Apply(*s.Session.User)
	s.Session = SessionState{User: &merged}
}

// UpdateFailure records a failed profile update. The identity is retained:
// update failures do not sign the user out.
type UpdateFailure struct {
	Message string
}

func (UpdateFailure) name() string { return "session/updateFailure" }

func (a UpdateFailure) apply(s *State) {
	s.Session.Loading = false
	s.Session.Error = a.Message
}

// --- async fetch phase actions (issued only by the Store's fetch operations) ---

type savedPending struct{}

func (savedPending) name() string { return "saved/pending" }

func (savedPending) apply(s *State) {
	s.Saved.Loading = true
	s.Saved.Error = ""
}

type savedFulfilled struct {
	collection domain.SavedCollection
}

func (savedFulfilled) name() string { return "saved/fulfilled" }

func (a savedFulfilled) apply(s *State) {
	// Wholesale replacement, never a merge.
	s.Saved = SavedState{Collection: a.collection}
}

type savedRejected struct {
	message string
}

func (savedRejected) name() string { return "saved/rejected" }

func (a savedRejected) apply(s *State) {
	// Prior data is retained so a transient failure does not blank the UI.
	s.Saved.Loading = false
	s.Saved.Error = a.message
}

type activityPending struct{}

func (activityPending) name() string { return "activity/pending" }

func (activityPending) apply(s *State) {
	s.Activity.Loading = true
	s.Activity.Error = ""
}

type activityFulfilled struct {
	activity domain.Activity
}

func (activityFulfilled) name() string { return "activity/fulfilled" }

func (a activityFulfilled) apply(s *State) {
	s.Activity = ActivityState{Activity: a.activity}
}

type activityRejected struct {
	message string
}

func (activityRejected) name() string { return "activity/rejected" }

func (a activityRejected) apply(s *State) {
	s.Activity.Loading = false
	s.Activity.Error = a.message
}

type resetEphemeral struct{}

func (resetEphemeral) name() string { return "store/resetEphemeral" }

func (resetEphemeral) apply(s *State) {
	s.Saved = defaultSaved()
	s.Activity = defaultActivity()
}
