// Package devauth provides a config-driven AuthProvider for local development.
// It skips the IdP round trip by pointing the browser straight at our own callback.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// Config controls the dev identity. UserID and Email are required.
type Config struct {
	UserID          string
	Email           string
	FullName        string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	mu       sync.Mutex
	identity domainauth.Identity
	ttl      time.Duration
	now      func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	ttl := cfg.SessionDuration
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	id := domainauth.Identity{UserID: cfg.UserID, Email: cfg.Email}
	if cfg.FullName != "" {
		id.FirstName, id.LastName = splitName(cfg.FullName)
	}
	return &Provider{identity: id, ttl: ttl, now: time.Now}, nil
}

// Begin returns a local callback URL carrying a fresh state; the nonce stays server-side.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity with a fresh expiry.
// State and nonce are validated by the HTTP handler against its cookies.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.identity
	id.ExpiresAt = p.now().Add(p.ttl)
	return id, nil
}

func splitName(full string) (string, string) {
	for i, r := range full {
		if r == ' ' {
			return full[:i], full[i+1:]
		}
	}
	return full, ""
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
