// Package app wires configuration, the persistence adapter, the backend
// client, the state store, and the HTTP surface into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/studentsenior/appcore/internal/api"
	"github.com/studentsenior/appcore/internal/bootstrap"
	"github.com/studentsenior/appcore/internal/config"
	handler "github.com/studentsenior/appcore/internal/handler/http"
	"github.com/studentsenior/appcore/internal/persist"
	"github.com/studentsenior/appcore/internal/store"
	"github.com/studentsenior/appcore/pkg/health"
	"github.com/studentsenior/appcore/pkg/httpclient"
	"github.com/studentsenior/appcore/pkg/middleware"
)

// App wires together all dependencies and runs the appcore service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	redis      *persist.Redis
	store      *store.Store
	syncer     *bootstrap.Syncer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Snapshot storage: Redis when configured, otherwise the no-op adapter
	// (state lives for the process lifetime only).
	var adapter persist.Adapter = persist.NewNoop()
	var redisAdapter *persist.Redis
	if cfg.RedisEnabled {
		var err error
		redisAdapter, err = persist.NewRedis(ctx, persist.RedisConfig{
			Host:      cfg.RedisHost,
			Port:      cfg.RedisPort,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.SnapshotNamespace,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		adapter = redisAdapter
		logger.Info("connected to Redis",
			slog.String("host", cfg.RedisHost),
			slog.Int("port", cfg.RedisPort),
		)
	}

	// Backend HTTP client: retries, cookie jar for the session, circuit
	// breaker in front.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.BackendTimeout
	httpCfg.UseCookieJar = true
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("backend"),
		logger,
	)

	client := api.NewClient(cfg.BackendBaseURL, breaker, logger,
		api.WithRateLimit(cfg.BackendRateLimit, cfg.BackendRateBurst))

	// The state store rehydrates from the snapshot before anything can
	// observe it.
	st := store.Init(store.Options{
		Backend:     client,
		Adapter:     adapter,
		Logger:      logger,
		SnapshotKey: cfg.SnapshotKey,
	})

	syncer := bootstrap.New(st, client, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	if redisAdapter != nil {
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return redisAdapter.Ping(ctx)
		})
	}

	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}

	router := handler.NewRouter(st, client, client, healthHandler, logger, corsConfig)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		redis:      redisAdapter,
		store:      st,
		syncer:     syncer,
		httpServer: httpServer,
	}, nil
}

// Run reconciles the rehydrated session with the backend, then starts the
// HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.syncer.Run(ctx)

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. State store (wait for pending snapshot writes)
// 3. Redis connection
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Snapshot writes are fire-and-forget; drain them before the adapter
	// goes away.
	a.store.Flush()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
