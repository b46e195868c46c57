package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/studentsenior/appcore/internal/api"
	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/store"
	apperrors "github.com/studentsenior/appcore/pkg/errors"
	"github.com/studentsenior/appcore/pkg/httputil"
)

// SessionClient is the slice of the backend client the session handlers use.
type SessionClient interface {
	Login(ctx context.Context, input api.LoginInput) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

// SessionHandler handles sign-in, sign-out, and profile edits, keeping the
// session slice in step with the backend.
type SessionHandler struct {
	store    *store.Store
	client   SessionClient
	logger   *slog.Logger
	validate *validator.Validate
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(st *store.Store, client SessionClient, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:    st,
		client:   client,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoginRequest is the JSON request body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UpdateProfileRequest is the JSON request body for editing the profile.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=100"`
	College   *string `json:"college" validate:"omitempty,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	AvatarURL *string `json:"profilePicture" validate:"omitempty,url"`
}

// Login handles POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("email and password are required"), h.logger)
		return
	}

	user, err := h.client.Login(r.Context(), api.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		httputil.WriteError(w, r, backendError(err), h.logger)
		return
	}

	h.store.Dispatch(store.SignInSuccess{User: *user})

	// Kick off the per-user data loads; their failures surface on the
	// slices themselves, not on the login response.
	if err := h.store.FetchSaved(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "saved fetch after login failed",
			slog.String("error", err.Error()))
	}
	if err := h.store.FetchActivity(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "activity fetch after login failed",
			slog.String("error", err.Error()))
	}

	httputil.WriteData(w, http.StatusOK, h.store.State().Session)
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Logout(r.Context()); err != nil {
		// The backend call is best-effort: local state is cleared either way.
		h.logger.WarnContext(r.Context(), "backend logout failed",
			slog.String("error", err.Error()))
	}
	h.store.Reset()

	httputil.WriteData(w, http.StatusOK, h.store.State().Session)
}

// UpdateProfile handles PATCH /api/v1/session/profile
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !h.store.State().Session.Authenticated() {
		httputil.WriteError(w, r, apperrors.Unauthorized("not signed in"), h.logger)
		return
	}

	var req UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid profile fields"), h.logger)
		return
	}

	update := domain.ProfileUpdate{
		Username:  req.Username,
		College:   req.College,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	}

	h.store.Dispatch(store.UpdateStart{})

	if _, err := h.client.UpdateProfile(r.Context(), update); err != nil {
		h.store.Dispatch(store.UpdateFailure{Message: api.UserMessage(err)})
		httputil.WriteError(w, r, backendError(err), h.logger)
		return
	}

	h.store.Dispatch(store.UpdateSuccess{Update: update})

	httputil.WriteData(w, http.StatusOK, h.store.State().Session)
}

// backendError maps a platform API failure onto the handler error model,
// preserving the server-provided message and the auth/client distinction.
func backendError(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return apperrors.Backend(api.GenericMessage)
	}
	msg := api.UserMessage(err)
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	default:
		return apperrors.Backend(msg)
	}
}
