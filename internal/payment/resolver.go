// Package payment implements the page-local payment callback flow: one order
// lookup per mount, then a timed redirect for terminal outcomes.
package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/studentsenior/appcore/internal/domain"
)

// CountdownSeconds is how long a terminal callback page waits before
// navigating to the order's return URL.
const CountdownSeconds = 5

// OrderLookup resolves an order identifier against the backend.
type OrderLookup interface {
	OrderStatus(ctx context.Context, orderID string) (*domain.Order, error)
}

// NavigateFunc performs the redirect to the order's return URL.
type NavigateFunc func(url string)

// Resolver drives the callback state machine for a single page mount:
//
//	pending -> processing -> {completed | failed} -> redirect
//	pending -> cancelled (no order id, or the lookup fails outright)
//
// Exactly one lookup is issued per mount and never retried. The countdown is
// owned by the resolver and stopped on Close, so no navigation can fire after
// the page is gone.
type Resolver struct {
	lookup   OrderLookup
	navigate NavigateFunc
	logger   *slog.Logger
	tick     time.Duration

	mu        sync.Mutex
	status    string
	order     *domain.Order
	remaining int
	navigated bool
	stop      chan struct{}
	stopped   bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTickInterval overrides the one-second countdown tick, for tests.
func WithTickInterval(d time.Duration) Option {
	return func(r *Resolver) { r.tick = d }
}

// New creates a resolver. navigate may be nil, in which case terminal states
// simply never redirect.
func New(lookup OrderLookup, navigate NavigateFunc, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:   lookup,
		navigate: navigate,
		logger:   logger,
		tick:     time.Second,
		status:   domain.OrderStatusPending,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the single lookup for orderID and returns the resulting
// status. An empty orderID cancels without issuing any request. A lookup
// error also cancels: the page shows the cancelled outcome rather than
// retrying.
func (r *Resolver) Resolve(ctx context.Context, orderID string) string {
	if orderID == "" {
		r.setStatus(domain.OrderStatusCancelled, nil)
		return domain.OrderStatusCancelled
	}

	r.setStatus(domain.OrderStatusProcessing, nil)

	order, err := r.lookup.OrderStatus(ctx, orderID)
	if err != nil {
		r.logger.Warn("order lookup failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		r.setStatus(domain.OrderStatusCancelled, nil)
		return domain.OrderStatusCancelled
	}

	r.setStatus(order.Status, order)

	if domain.IsTerminalOrderStatus(order.Status) && order.ReturnURL != "" {
		r.startCountdown(order.ReturnURL)
	}
	return order.Status
}

// Status returns the current machine state.
func (r *Resolver) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Order returns the resolved order, nil until a successful lookup.
func (r *Resolver) Order() *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order
}

// Remaining returns the countdown seconds left, zero when no countdown runs.
func (r *Resolver) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// RedirectNow navigates immediately, skipping the rest of the countdown.
// It has no effect unless a countdown is running.
func (r *Resolver) RedirectNow() {
	if r.navigate == nil {
		return
	}

	r.mu.Lock()
	url := ""
	if r.order != nil {
		url = r.order.ReturnURL
	}
	if url == "" || r.navigated {
		r.mu.Unlock()
		return
	}
	r.navigated = true
	r.remaining = 0
	r.closeStopLocked()
	r.mu.Unlock()

	r.navigate(url)
}

// Close tears the countdown down. After Close no navigation fires.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeStopLocked()
}

func (r *Resolver) closeStopLocked() {
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

func (r *Resolver) setStatus(status string, order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	if order != nil {
		r.order = order
	}
}

// startCountdown arms the redirect timer: CountdownSeconds ticks, then one
// navigation. The goroutine exits early when the resolver is closed or the
// user redirected explicitly.
func (r *Resolver) startCountdown(url string) {
	r.mu.Lock()
	r.remaining = CountdownSeconds
	r.mu.Unlock()

	if r.navigate == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.mu.Lock()
				if r.navigated || r.stopped {
					r.mu.Unlock()
					return
				}
				r.remaining--
				if r.remaining > 0 {
					r.mu.Unlock()
					continue
				}
				r.navigated = true
				r.closeStopLocked()
				r.mu.Unlock()

				r.navigate(url)
				return
			}
		}
	}()
}
