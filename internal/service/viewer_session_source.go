package service

import (
	"context"
	"errors"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// ViewerSessionSource adapts AuthService to the SessionSource port for one viewer,
// identified by the session id from their cookie or token.
type ViewerSessionSource struct {
	auth      *AuthService
	events    ports.SessionEvents
	sessionID string
}

var _ ports.SessionSource = (*ViewerSessionSource)(nil)

// NewViewerSessionSource binds a source to sessionID. An empty id is a viewer with no session.
func NewViewerSessionSource(auth *AuthService, events ports.SessionEvents, sessionID string) *ViewerSessionSource {
	return &ViewerSessionSource{auth: auth, events: events, sessionID: sessionID}
}

// CurrentSession returns nil, nil for a missing or expired session.
func (v *ViewerSessionSource) CurrentSession(ctx context.Context) (*domainauth.Session, error) {
	if v.sessionID == "" {
		return nil, nil
	}
	sess, err := v.auth.GetSession(ctx, v.sessionID)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// OnSessionChange forwards events for this viewer's session only.
func (v *ViewerSessionSource) OnSessionChange(
	ctx context.Context,
	fn func(domainauth.SessionEvent),
) (func(), error) {
	if v.events == nil || v.sessionID == "" {
		return func() {}, nil
	}
	return v.events.Subscribe(ctx, func(ev domainauth.SessionEvent) {
		if ev.SessionID == v.sessionID {
			fn(ev)
		}
	})
}

// SignOut ends this viewer's session.
func (v *ViewerSessionSource) SignOut(ctx context.Context) error {
	return v.auth.Logout(ctx, v.sessionID)
}
