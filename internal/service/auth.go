package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleResolver
	// Tokens issues the access token carried by a session. Optional.
	Tokens ports.TokenIssuer
	// Events receives session lifecycle notifications. Optional.
	Events ports.SessionEvents
	Logger *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating the provider, role
// resolution, token issuance and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleResolver
	tokens   ports.TokenIssuer
	events   ports.SessionEvents
	logger   *slog.Logger
	now      func() time.Time
}

// ErrSessionExpired is returned by GetSession for a session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrSessionMismatch is returned when a token does not belong to the session it names.
var ErrSessionMismatch = errors.New("token does not match session")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		tokens:   opts.Tokens,
		events:   opts.Events,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the code for an identity, resolves the caller's role,
// issues an access token and persists the session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if strings.TrimSpace(identity.Email) == "" {
		return nil, errors.New("identity has no email")
	}

	resolution := s.roles.Resolve(ctx, &identity)

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      resolution.Role,
		ExpiresAt: identity.ExpiresAt,
	}
	if s.tokens != nil {
		tok, tokErr := s.tokens.Issue(session)
		if tokErr != nil {
			return nil, fmt.Errorf("issue access token: %w", tokErr)
		}
		session.AccessToken = tok
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	s.publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionStarted, SessionID: session.ID, Session: &session})

	s.logger.InfoContext(ctx, "login completed",
		"session_id", session.ID, "role", session.Role, "source", resolution.Profile.Source)
	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a live session by ID. An expired session is deleted and
// announced as ended.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		s.publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionEnded, SessionID: sessionID})
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// SessionFromToken returns the live session named by an access token.
func (s *AuthService) SessionFromToken(ctx context.Context, token string) (*domainauth.Session, error) {
	if s.tokens == nil {
		return nil, errors.New("access tokens are not enabled")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	sess, err := s.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.Subject || sess.AccessToken != token {
		return nil, ErrSessionMismatch
	}
	return sess, nil
}

// UpdateRole re-resolves the role for a session, e.g. after the user registers as a
// caregiver, and announces the refresh when it changed.
func (s *AuthService) UpdateRole(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	id := sess.Identity()
	resolution := s.roles.Resolve(ctx, &id)
	if resolution.Role == sess.Role {
		return sess, nil
	}

	sess.Role = resolution.Role
	if s.tokens != nil {
		tok, tokErr := s.tokens.Issue(*sess)
		if tokErr != nil {
			return nil, fmt.Errorf("issue access token: %w", tokErr)
		}
		sess.AccessToken = tok
	}
	if saveErr := s.sessions.Save(ctx, *sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	s.publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionRefreshed, SessionID: sess.ID, Session: sess})
	return sess, nil
}

// Logout removes a session and announces that it ended.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionEnded, SessionID: sessionID})
	return nil
}

func (s *AuthService) publish(ctx context.Context, ev domainauth.SessionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "publish session event failed",
			"kind", ev.Kind, "session_id", ev.SessionID, "error", err)
	}
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.New().String()
}
