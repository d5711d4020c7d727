package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/config"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/authroles"
	redisadapter "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/redis"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/service"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Resolver  *service.RoleResolver
	Favorites *service.FavoritesService
	Events    *redisadapter.SessionEventBus
	Mirror    *redisadapter.KVStore
	Janitor   *service.MirrorJanitor
	Profiles  *data.ProfileRepo
	// Candidates backs the caregiver step of the role cascade.
	Candidates    *data.CandidateRepo
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled.
	MetricsSink   statsd.Sink
	MetricsClient *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Close releases the metrics connection.
func (o ObservabilityContainer) Close() error {
	return o.MetricsClient.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink. A statsd failure disables metrics
// rather than blocking startup.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	out := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return out
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled:    true,
		Address:    cfg.Metrics.StatsdAddress,
		Prefix:     cfg.Metrics.Prefix,
		GlobalTags: cfg.Metrics.GlobalTags(),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.MetricsClient = client
	out.MetricsSink = client
	return out
}

// NewServices wires repositories, adapters and services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)
	c := ServiceContainer{Observability: obs}

	if deps.DB != nil {
		c.Profiles = data.NewProfileRepo(deps.DB)
		c.Candidates = data.NewCandidateRepo(deps.DB)
	} else {
		logger.Warn("database not configured; role cascade limited to the admin allow-list")
	}

	resolverOpts := service.RoleResolverOptions{
		AllowList: authroles.DefaultAllowList(),
		Metrics:   obs.MetricsSink,
		Logger:    logger,
	}
	// Typed nil repos must not reach the interface fields.
	if c.Profiles != nil {
		resolverOpts.Profiles = c.Profiles
	}
	if c.Candidates != nil {
		resolverOpts.Candidates = c.Candidates
	}
	c.Resolver = service.NewRoleResolver(resolverOpts)

	if deps.RedisClient == nil {
		return c, errors.New("redis client is required")
	}

	c.Mirror = redisadapter.NewKVStore(deps.RedisClient, cfg.Redis.MirrorTTL)
	c.Events = redisadapter.NewSessionEventBus(redisadapter.SessionEventBusOptions{
		Client:  deps.RedisClient,
		Channel: cfg.Redis.EventsChannel,
		Logger:  logger,
	})
	c.Favorites = service.NewFavoritesService(service.FavoritesServiceOptions{
		Store:   c.Mirror,
		Metrics: obs.MetricsSink,
		Logger:  logger,
	})
	c.Janitor = service.NewMirrorJanitor(service.MirrorJanitorOptions{
		Events: c.Events,
		Mirror: c.Mirror,
		Logger: logger,
	})

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Roles:       c.Resolver,
		Events:      c.Events,
		Logger:      logger,
	})
	if err != nil {
		return c, fmt.Errorf("build auth service: %w", err)
	}
	c.Auth = auth

	return c, nil
}

// SessionSources returns the per-viewer session source factory used by the event stream.
func (c ServiceContainer) SessionSources() func(sessionID string) ports.SessionSource {
	if c.Auth == nil {
		return nil
	}
	return func(sessionID string) ports.SessionSource {
		return service.NewViewerSessionSource(c.Auth, c.Events, sessionID)
	}
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and the mirror janitor and blocks
// until a shutdown signal arrives or one of them fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	server := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		DB:       cfg.DB,
		Logger:   logger,
	})
	g.Go(func() error {
		return ServeHTTP(gctx, ServeConfig{
			Server:          server,
			ShutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
			Logger:          logger,
		})
	})

	if cfg.Services.Janitor != nil {
		g.Go(func() error {
			logger.Info("starting mirror janitor")
			if err := cfg.Services.Janitor.Run(gctx); err != nil {
				return fmt.Errorf("mirror janitor: %w", err)
			}
			logger.Info("mirror janitor stopped")
			return nil
		})
	}

	err := g.Wait()
	if closeErr := cfg.Services.Observability.Close(); closeErr != nil {
		logger.Warn("close metrics client", "error", closeErr)
	}
	return err
}
