package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

const minTokenSecretLen = 32

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	// IssuerURL accepts either the issuer or its discovery document URL.
	IssuerURL string `env:"ISSUER_URL"`
}

// DevAuthConfig controls the mock identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"   envDefault:"dev-user"`
	Email    string `env:"EMAIL"     envDefault:"admin@careconnect.com"`
	FullName string `env:"FULL_NAME" envDefault:"Dev Admin"`
}

// TokenConfig controls the app access token issued at login.
type TokenConfig struct {
	// Secret signs tokens with HS256. At least 32 bytes.
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL"    envDefault:"1h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	Token TokenConfig `envPrefix:"AUTH_TOKEN_"`

	// SessionPrefix namespaces session keys in Redis.
	SessionPrefix string `env:"AUTH_SESSION_PREFIX" envDefault:"careconnect:session:"`
}

// Sanitize trims values and clamps the token TTL.
func (a *AuthConfig) Sanitize() {
	a.OAuth.IssuerURL = strings.TrimSpace(a.OAuth.IssuerURL)
	a.OAuth.RedirectURL = strings.TrimSpace(a.OAuth.RedirectURL)
	a.DevAuth.Email = strings.TrimSpace(a.DevAuth.Email)
	if a.Token.TTL <= 0 {
		a.Token.TTL = time.Hour
	}
	if strings.TrimSpace(a.SessionPrefix) == "" {
		a.SessionPrefix = "careconnect:session:"
	}
}

// Validate checks the mode-specific settings. Mock mode is refused outside dev.
func (a *AuthConfig) Validate(isDev bool) error {
	var errs []error
	switch a.Mode {
	case AuthModeMock:
		if !isDev {
			errs = append(errs, errors.New("AUTH_MODE=mock requires DEV=true"))
		}
		if a.DevAuth.Email == "" {
			errs = append(errs, errors.New("DEV_AUTH_EMAIL is required in mock mode"))
		}
	case AuthModeOAuth:
		if a.OAuth.IssuerURL == "" || a.OAuth.ClientID == "" || a.OAuth.ClientSecret == "" {
			errs = append(errs, errors.New("OAUTH_ISSUER_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth mode %q", a.Mode))
	}
	if a.Token.Secret != "" && len(a.Token.Secret) < minTokenSecretLen {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_SECRET must be at least %d bytes", minTokenSecretLen))
	}
	return errors.Join(errs...)
}

// TokensEnabled reports whether access tokens should be issued.
func (a *AuthConfig) TokensEnabled() bool {
	return a.Token.Secret != ""
}
