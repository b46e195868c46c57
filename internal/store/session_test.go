package store

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentsenior/appcore/internal/domain"
)

func fullUser() domain.User {
	return domain.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@campus.edu",
		College:  "IET Lucknow",
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Options{})
	t.Cleanup(s.Flush)
	return s
}

func TestSignInSuccess(t *testing.T) {
	s := newTestStore(t)

	s.Dispatch(SignInSuccess{User: fullUser()})

	state := s.State()
	require.NotNil(t, state.Session.User)
	assert.Equal(t, "alice", state.Session.User.Username)
	assert.True(t, state.Session.Authenticated())
	assert.False(t, state.Session.Loading)
	assert.Empty(t, state.Session.Error)
}

func TestSignInSuccessClearsPriorError(t *testing.T) {
	s := newTestStore(t)

	s.Dispatch(SignInSuccess{User: fullUser()})
	s.Dispatch(UpdateStart{})
	s.Dispatch(UpdateFailure{Message: "phone already in use"})
	s.Dispatch(SignInSuccess{User: fullUser()})

	state := s.State()
	assert.Empty(t, state.Session.Error)
	assert.False(t, state.Session.Loading)
}

func TestSignInSuccessRejectsIncompleteIdentity(t *testing.T) {
	s := newTestStore(t)

	s.Dispatch(SignInSuccess{User: domain.User{ID: "u1"}})

	state := s.State()
	assert.Nil(t, state.Session.User)
	assert.False(t, state.Session.Authenticated())
}

func TestSignOutClearsEverything(t *testing.T) {
	s := newTestStore(t)

	s.Dispatch(SignInSuccess{User: fullUser()})
	s.Dispatch(UpdateStart{})
	s.Dispatch(SignOut{})

	state := s.State()
	assert.Nil(t, state.Session.User)
	assert.False(t, state.Session.Loading)
	assert.Empty(t, state.Session.Error)
}

func TestUpdateLifecycle(t *testing.T) {
	s := newTestStore(t)
	s.Dispatch(SignInSuccess{User: fullUser()})

	s.Dispatch(UpdateStart{})
	state := s.State()
	assert.True(t, state.Session.Loading)
	require.NotNil(t, state.Session.User, "identity retained during in-flight update")

	phone := "12345"
	s.Dispatch(UpdateSuccess{Update: domain.ProfileUpdate{Phone: &phone}})
	state = s.State()
	assert.False(t, state.Session.Loading)
	require.NotNil(t, state.Session.User)
	assert.Equal(t, "12345", state.Session.User.Phone)
	assert.Equal(t, "alice", state.Session.User.Username)
}

func TestUpdateFailureRetainsIdentity(t *testing.T) {
	s := newTestStore(t)
	s.Dispatch(SignInSuccess{User: fullUser()})

	s.Dispatch(UpdateStart{})
	s.Dispatch(UpdateFailure{Message: "validation failed"})

	state := s.State()
	require.NotNil(t, state.Session.User, "update failures do not sign the user out")
	assert.Equal(t, "validation failed", state.Session.Error)
	assert.False(t, state.Session.Loading)
}

func TestUpdateActionsNoopWhenAnonymous(t *testing.T) {
	s := newTestStore(t)

	s.Dispatch(UpdateStart{})
	assert.False(t, s.State().Session.Loading)

	phone := "12345"
	s.Dispatch(UpdateSuccess{Update: domain.ProfileUpdate{Phone: &phone}})
	assert.Nil(t, s.State().Session.User)
}

// TestSessionNeverHoldsPartialIdentity drives the session slice with random
// action sequences and asserts after every dispatch that the identity is
// either fully populated or entirely absent.
func TestSessionNeverHoldsPartialIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randomUser := func() domain.User {
		// Mix of complete and incomplete identities.
		u := domain.User{}
		if rng.Intn(4) > 0 {
			u = fullUser()
			u.ID = fmt.Sprintf("u%d", rng.Intn(100))
		} else {
			switch rng.Intn(3) {
			case 0:
				u.ID = "only-id"
			case 1:
				u.Username = "only-name"
			case 2:
				u.Email = "only@mail.test"
			}
		}
		return u
	}

	randomAction := func() Action {
		switch rng.Intn(5) {
		case 0:
			return SignInSuccess{User: randomUser()}
		case 1:
			return SignOut{}
		case 2:
			return UpdateStart{}
		case 3:
			phone := fmt.Sprintf("%d", rng.Intn(1_000_000))
			return UpdateSuccess{Update: domain.ProfileUpdate{Phone: &phone}}
		default:
			return UpdateFailure{Message: "err"}
		}
	}

	for run := 0; run < 50; run++ {
		s := New(Options{})
		for i := 0; i < 40; i++ {
			a := randomAction()
			s.Dispatch(a)

			session := s.State().Session
			if session.User != nil {
				require.True(t, session.User.Complete(),
					"run %d step %d: partial identity after %s: %+v", run, i, a.name(), session.User)
			}
		}
		s.Flush()
	}
}
