package http

import (
	"log/slog"
	"net/http"

	"github.com/studentsenior/appcore/internal/store"
	"github.com/studentsenior/appcore/pkg/httputil"
)

// StateHandler exposes the current application state and the explicit
// refresh operations for the per-user data slices.
type StateHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewStateHandler creates a new state HTTP handler.
func NewStateHandler(st *store.Store, logger *slog.Logger) *StateHandler {
	return &StateHandler{store: st, logger: logger}
}

// GetState handles GET /api/v1/state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.store.State())
}

// RefreshSaved handles POST /api/v1/saved/refresh
func (h *StateHandler) RefreshSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.store.FetchSaved(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "saved refresh failed",
			slog.String("error", err.Error()))
	}
	// The slice records its own outcome; the response reflects it either way.
	httputil.WriteData(w, http.StatusOK, h.store.State().Saved)
}

// RefreshActivity handles POST /api/v1/activity/refresh
func (h *StateHandler) RefreshActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.store.FetchActivity(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "activity refresh failed",
			slog.String("error", err.Error()))
	}
	httputil.WriteData(w, http.StatusOK, h.store.State().Activity)
}
