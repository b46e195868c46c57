package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studentsenior/appcore/internal/payment"
	"github.com/studentsenior/appcore/internal/store"
	"github.com/studentsenior/appcore/pkg/health"
	"github.com/studentsenior/appcore/pkg/middleware"
)

// NewRouter creates a chi router with all appcore routes registered.
func NewRouter(
	st *store.Store,
	sessionClient SessionClient,
	orderLookup payment.OrderLookup,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("appcore"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	sessionHandler := NewSessionHandler(st, sessionClient, logger)
	stateHandler := NewStateHandler(st, logger)
	paymentHandler := NewPaymentHandler(orderLookup, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", stateHandler.GetState)

		r.Post("/session/login", sessionHandler.Login)
		r.Post("/session/logout", sessionHandler.Logout)
		r.Patch("/session/profile", sessionHandler.UpdateProfile)

		r.Post("/saved/refresh", stateHandler.RefreshSaved)
		r.Post("/activity/refresh", stateHandler.RefreshActivity)

		r.Get("/payment/callback", paymentHandler.Callback)
	})

	return r
}
