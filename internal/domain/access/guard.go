// Package access holds the pure navigation gating rules: the route guard state
// machine and the dashboard role mapping. Transport layers apply the Decisions.
package access

import (
	"net/url"
	"strings"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// View is what the caller should present.
type View string

const (
	// ViewLoading is the neutral pending affordance shared by the guard and the dashboard router.
	ViewLoading  View = "loading"
	ViewContent  View = "content"
	ViewRedirect View = "redirect"
)

// Decision is the output of the guard and of the dashboard router.
// Location is set only for ViewRedirect.
type Decision struct {
	View     View   `json:"view"`
	Location string `json:"location,omitempty"`
}

// Loading is the shared pending decision.
func Loading() Decision { return Decision{View: ViewLoading} }

// Redirect builds a redirect decision.
func Redirect(location string) Decision { return Decision{View: ViewRedirect, Location: location} }

// Login boundary paths.
const (
	LoginPath         = "/auth/login"
	RedirectParamName = "redirect_uri"
)

// GuardState is the state of a route guard.
type GuardState string

const (
	StateChecking        GuardState = "checking"
	StateAuthenticated   GuardState = "authenticated"
	StateUnauthenticated GuardState = "unauthenticated"
)

// Guard gates a protected location on session presence. It never looks at role.
// Not safe for concurrent use; callers own one guard per view.
type Guard struct {
	requested string
	state     GuardState
}

// NewGuard creates a guard in the checking state for the requested location.
// Anything that is not a same-origin relative path is replaced with "/".
func NewGuard(requested string) *Guard {
	return &Guard{requested: SafeReturnPath(requested), state: StateChecking}
}

// State returns the current guard state.
func (g *Guard) State() GuardState { return g.state }

// Requested returns the sanitized return target.
func (g *Guard) Requested() string { return g.requested }

// Decision returns the decision for the current state without transitioning.
func (g *Guard) Decision() Decision {
	switch g.state {
	case StateAuthenticated:
		return Decision{View: ViewContent}
	case StateUnauthenticated:
		return Redirect(LoginURL(g.requested))
	default:
		return Loading()
	}
}

// Observe feeds a session status into the guard and returns the resulting decision.
// Once the guard has left checking, an unknown status is ignored.
func (g *Guard) Observe(status domainauth.SessionStatus) Decision {
	switch status {
	case domainauth.SessionPresent:
		g.state = StateAuthenticated
	case domainauth.SessionAbsent:
		g.state = StateUnauthenticated
	}
	return g.Decision()
}

// LoginURL returns the login boundary with the return target attached.
func LoginURL(returnTo string) string {
	returnTo = SafeReturnPath(returnTo)
	if returnTo == "/" {
		return LoginPath
	}
	return LoginPath + "?" + RedirectParamName + "=" + url.QueryEscape(returnTo)
}

// SafeReturnPath keeps only same-origin relative paths (with query).
func SafeReturnPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	out := u.EscapedPath()
	if out == "" {
		out = "/"
	}
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}
