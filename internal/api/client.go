package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/studentsenior/appcore/internal/domain"
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// maxResponseBody bounds how much of a backend response is read.
const maxResponseBody = 4 << 20

// envelope is the backend's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is the REST client for the platform backend. Session credentials are
// an opaque token captured at login and forwarded on every subsequent call.
type Client struct {
	endpoints Endpoints
	http      Doer
	limiter   *rate.Limiter
	validate  *validator.Validate
	logger    *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit caps outgoing backend requests at r per second with burst b.
func WithRateLimit(r float64, b int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(r), b)
	}
}

// NewClient creates a backend API client rooted at baseURL.
func NewClient(baseURL string, doer Doer, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoints: NewEndpoints(baseURL),
		http:      doer,
		validate:  validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs a session token carried on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token, empty when anonymous.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one backend call: marshal body, attach credentials, decode the
// envelope, and unmarshal data into out (when non-nil). Non-2xx statuses and
// success:false envelopes become *Error values carrying the server message.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &Error{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode backend envelope: %w", jsonErr)
	}

	c.logger.DebugContext(ctx, "backend call",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("backend envelope has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

// --- Auth ---

// LoginInput holds user credentials for sign-in.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Login signs the user in and captures the session token for later calls.
func (c *Client) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	var payload loginPayload
	if err := c.do(ctx, http.MethodPost, c.endpoints.Login(), input, &payload); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(payload.User); err != nil {
		return nil, fmt.Errorf("malformed user payload: %w", err)
	}
	c.SetToken(payload.Token)
	return &payload.User, nil
}

// Logout ends the backend session and drops the local token unconditionally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, c.endpoints.Logout(), nil, nil)
	c.SetToken("")
	return err
}

// CurrentUser re-validates the session and returns the authoritative identity.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, c.endpoints.CurrentUser(), nil, &user); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("malformed user payload: %w", err)
	}
	return &user, nil
}

// --- User ---

// UpdateProfile applies a partial profile edit and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPatch, c.endpoints.Profile(), update, &user); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("malformed user payload: %w", err)
	}
	return &user, nil
}

// Activity fetches the user's reward summary and submission history.
func (c *Client) Activity(ctx context.Context) (*domain.Activity, error) {
	activity := domain.EmptyActivity()
	if err := c.do(ctx, http.MethodGet, c.endpoints.Activity(), nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// --- Saved data ---

// SavedCollection fetches the user's saved and purchased resources.
func (c *Client) SavedCollection(ctx context.Context) (*domain.SavedCollection, error) {
	col := domain.EmptySavedCollection()
	if err := c.do(ctx, http.MethodGet, c.endpoints.SavedData(), nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// --- Colleges ---

// Colleges lists the colleges available on the platform.
func (c *Client) Colleges(ctx context.Context) ([]domain.College, error) {
	var colleges []domain.College
	if err := c.do(ctx, http.MethodGet, c.endpoints.Colleges(), nil, &colleges); err != nil {
		return nil, err
	}
	return colleges, nil
}

// College fetches a single college by its URL slug.
func (c *Client) College(ctx context.Context, slug string) (*domain.College, error) {
	var college domain.College
	if err := c.do(ctx, http.MethodGet, c.endpoints.College(slug), nil, &college); err != nil {
		return nil, err
	}
	return &college, nil
}

// CollegePYQs fetches the past papers listed for a college.
func (c *Client) CollegePYQs(ctx context.Context, slug string) ([]domain.Resource, error) {
	var pyqs []domain.Resource
	if err := c.do(ctx, http.MethodGet, c.endpoints.CollegePYQs(slug), nil, &pyqs); err != nil {
		return nil, err
	}
	return pyqs, nil
}

// --- Payment ---

type orderPayload struct {
	ID       string `json:"orderId"`
	Status   string `json:"status" validate:"required"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Metadata struct {
		ReturnURL string `json:"returnUrl" validate:"omitempty,url"`
	} `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderStatus looks up a payment order by its identifier.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (*domain.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, c.endpoints.OrderStatus(orderID), nil, &payload); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("malformed order payload: %w", err)
	}
	if !domain.IsValidOrderStatus(payload.Status) {
		return nil, fmt.Errorf("malformed order payload: unknown status %q", payload.Status)
	}

	order := &domain.Order{
		ID:        payload.ID,
		Status:    payload.Status,
		Amount:    payload.Amount,
		Currency:  payload.Currency,
		ReturnURL: payload.Metadata.ReturnURL,
		CreatedAt: payload.CreatedAt,
	}
	if order.ID == "" {
		order.ID = orderID
	}
	return order, nil
}

// --- Contact ---

// ContactInput is a message submitted through the contact-us form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// SubmitContact sends a contact-us message.
func (c *Client) SubmitContact(ctx context.Context, input ContactInput) error {
	return c.do(ctx, http.MethodPost, c.endpoints.Contact(), input, nil)
}
