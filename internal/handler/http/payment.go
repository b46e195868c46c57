package http

import (
	"log/slog"
	"net/http"

	"github.com/studentsenior/appcore/internal/domain"
	"github.com/studentsenior/appcore/internal/payment"
	"github.com/studentsenior/appcore/pkg/httputil"
)

// PaymentHandler resolves payment callback landings. Each request is its own
// mount: one resolver, one lookup, no retry.
type PaymentHandler struct {
	lookup payment.OrderLookup
	logger *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(lookup payment.OrderLookup, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{lookup: lookup, logger: logger}
}

// CallbackResponse describes the callback outcome to the caller. When the
// order reached a terminal state with a return URL, RedirectURL and
// CountdownSeconds tell the caller where to go and how long the page waits.
type CallbackResponse struct {
	Status           string        `json:"status"`
	Order            *domain.Order `json:"order,omitempty"`
	RedirectURL      string        `json:"redirectUrl,omitempty"`
	CountdownSeconds int           `json:"countdownSeconds,omitempty"`
}

// Callback handles GET /api/v1/payment/callback?orderId=...
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")

	resolver := payment.New(h.lookup, nil, h.logger)
	defer resolver.Close()

	status := resolver.Resolve(r.Context(), orderID)

	resp := CallbackResponse{
		Status: status,
		Order:  resolver.Order(),
	}
	if order := resolver.Order(); order != nil &&
		domain.IsTerminalOrderStatus(order.Status) && order.ReturnURL != "" {
		resp.RedirectURL = order.ReturnURL
		resp.CountdownSeconds = resolver.Remaining()
	}

	httputil.WriteData(w, http.StatusOK, resp)
}
