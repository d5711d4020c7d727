package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/config"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/apptoken"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/devauth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/oidc"
	redisadapter "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/redis"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/service"
	"github.com/redis/go-redis/v9"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Roles       ports.RoleResolver
	// Events receives session lifecycle notifications. Optional.
	Events ports.SessionEvents
	Logger *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth service requires a redis client")
	}
	if cfg.Roles == nil {
		return nil, errors.New("auth service requires a role resolver")
	}

	provider, err := buildAuthProvider(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}

	var tokens ports.TokenIssuer
	if cfg.Auth.TokensEnabled() {
		issuer, issuerErr := apptoken.NewIssuer(apptoken.IssuerOptions{
			Secret: cfg.Auth.Token.Secret,
			TTL:    cfg.Auth.Token.TTL,
		})
		if issuerErr != nil {
			return nil, fmt.Errorf("create token issuer: %w", issuerErr)
		}
		tokens = issuer
	} else if cfg.Logger != nil {
		cfg.Logger.Warn("AUTH_TOKEN_SECRET not set; sessions carry no access token")
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStore(cfg.RedisClient, cfg.Auth.SessionPrefix),
		Roles:    cfg.Roles,
		Tokens:   tokens,
		Events:   cfg.Events,
		Logger:   cfg.Logger,
	}), nil
}

//nolint:ireturn // the provider is chosen by auth mode at runtime.
func buildAuthProvider(ctx context.Context, cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Email:    cfg.DevAuth.Email,
			FullName: cfg.DevAuth.FullName,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			IssuerURL:    cfg.OAuth.IssuerURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
