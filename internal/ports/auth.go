// Package ports defines interfaces (hexagonal ports) for auth and role-resolution behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ErrSessionNotFound is returned by SessionStore.Get for a missing or expired session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionEvents fans out session lifecycle changes to listeners in any process.
type SessionEvents interface {
	Publish(ctx context.Context, ev domainauth.SessionEvent) error
	// Subscribe delivers events until stop is called or ctx ends.
	Subscribe(ctx context.Context, fn func(domainauth.SessionEvent)) (stop func(), err error)
}

// SessionSource is the per-viewer view of the auth provider used by the session provider.
// CurrentSession returns nil, nil when the viewer has no session.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*domainauth.Session, error)
	OnSessionChange(ctx context.Context, fn func(domainauth.SessionEvent)) (stop func(), err error)
	SignOut(ctx context.Context) error
}

// RoleResolver decides the role for an identity. It never returns an error;
// lookup failures degrade to later cascade steps.
type RoleResolver interface {
	Resolve(ctx context.Context, id *domainauth.Identity) domainauth.Resolution
}

// TokenClaims are the fields carried by an app access token.
type TokenClaims struct {
	Subject   string
	Email     string
	Role      domainauth.Role
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies app access tokens.
type TokenIssuer interface {
	Issue(sess domainauth.Session) (string, error)
	Parse(token string) (TokenClaims, error)
}
