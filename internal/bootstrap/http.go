package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/config"
	httpx "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// BuildRouterServices maps the service container onto the router's dependencies.
func BuildRouterServices(cfg *HTTPServerConfig) httpx.RouterServices {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	svc := cfg.Services

	rs := httpx.RouterServices{
		SessionSources:  svc.SessionSources(),
		Metrics:         svc.Observability.MetricsSink,
		Readiness:       readinessChecks(cfg.DB, svc),
		CookieDomain:    appCfg.HTTP.CookieDomain,
		StreamHeartbeat: appCfg.HTTP.StreamHeartbeat,
		IsDev:           appCfg.IsDev,
		Logger:          logger,
	}
	// Interface fields stay nil when the concrete service is missing.
	if svc.Auth != nil {
		rs.Auth = svc.Auth
	}
	if svc.Favorites != nil {
		rs.Favorites = svc.Favorites
	}
	if svc.Resolver != nil {
		rs.Resolver = svc.Resolver
	}
	if svc.Mirror != nil {
		rs.TokenMirror = svc.Mirror
	}
	if appCfg.HTTP.LoginRate > 0 {
		rs.LoginLimiter = httpx.NewRateLimiter(httpx.RateLimiterOptions{
			Rate:   appCfg.HTTP.LoginRate,
			Burst:  appCfg.HTTP.LoginBurst,
			Logger: logger,
		})
	}
	return rs
}

func readinessChecks(db *sql.DB, svc ServiceContainer) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if svc.Mirror != nil {
		checks["redis"] = svc.Mirror.Health
	}
	return checks
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}
	// WriteTimeout stays zero so the session event stream is not cut off.
	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(BuildRouterServices(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeConfig contains dependencies for running and stopping the HTTP server.
type ServeConfig struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// ServeHTTP runs the server until ctx is cancelled, then shuts it down gracefully.
func ServeHTTP(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("http server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Shutdown cancels request contexts so open event streams end.
	reqCtx, cancelRequests := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRequests()
	cfg.Server.BaseContext = func(net.Listener) context.Context { return reqCtx }
	cfg.Server.RegisterOnShutdown(cancelRequests)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
		if err := cfg.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
