// Package bootstrap reconciles client-cached session state with backend
// truth at application mount.
package bootstrap

import (
	"context"
	"log/slog"
	"sync"

	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/store"
)

// SessionBackend re-validates the current session against the backend.
type SessionBackend interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Syncer runs the one-time startup reconciliation: whatever session snapshot
// rehydration produced, the backend's answer wins. It is the sole mechanism
// that catches sessions revoked elsewhere (password change, account
// disabled, token expiry).
type Syncer struct {
	store   *store.Store
	backend SessionBackend
	logger  *slog.Logger
	once    sync.Once
}

// New creates a syncer for the given store.
func New(st *store.Store, backend SessionBackend, logger *slog.Logger) *Syncer {
	return &Syncer{store: st, backend: backend, logger: logger}
}

// Run performs the reconciliation exactly once; later calls are no-ops.
// On success the server identity overwrites the session slice and the
// per-user data fetches are kicked off. On any failure the session is
// cleared: a stale persisted session is never trusted over a failed
// re-validation.
func (s *Syncer) Run(ctx context.Context) {
	s.once.Do(func() {
		user, err := s.backend.CurrentUser(ctx)
		if err != nil {
			s.logger.Info("session re-validation failed, signing out",
				slog.String("error", err.Error()),
			)
			s.store.Dispatch(store.SignOut{})
			return
		}

		s.store.Dispatch(store.SignInSuccess{User: *user})
		s.logger.Info("session re-validated", slog.String("user_id", user.ID))

		// Post-login data loads. Failures are absorbed into each slice's
		// error state and retried on the next explicit refresh.
		if err := s.store.FetchSaved(ctx); err != nil {
			s.logger.Warn("saved collection fetch failed", slog.String("error", err.Error()))
		}
		if err := s.store.FetchActivity(ctx); err != nil {
			s.logger.Warn("activity fetch failed", slog.String("error", err.Error()))
		}
	})
}
