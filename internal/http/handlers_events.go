package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/access"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/service"
)

const defaultHeartbeat = 15 * time.Second

// SessionEventHandlers streams a viewer's guard and dashboard decisions over SSE.
type SessionEventHandlers struct {
	// Sources builds the per-viewer session source for a session id ("" when signed out).
	Sources  func(sessionID string) ports.SessionSource
	Resolver ports.RoleResolver
	// Mirror receives the viewer's access token while the stream is open. Optional.
	Mirror    ports.KVStore
	Metrics   statsd.Sink
	Heartbeat time.Duration
	Logger    *slog.Logger
}

func (h *SessionEventHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RoleEvent is the payload of a "role" stream event.
type RoleEvent struct {
	Pending  bool                    `json:"pending"`
	Role     domainauth.Role         `json:"role,omitempty"`
	Profile  *domainauth.RoleProfile `json:"profile,omitempty"`
	Decision access.Decision         `json:"decision"`
}

// Stream serves GET /auth/events?path=<protected path>.
// The first event is always the guard's loading decision. Each session change
// re-drives the guard; each present session is re-resolved and only the latest
// resolution is streamed.
func (h *SessionEventHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := ""
	if c, err := r.Cookie(SessionCookieName); err == nil {
		sessionID = c.Value
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) bool {
		if err := writeSSE(w, event, v); err != nil {
			h.logger().DebugContext(ctx, "session stream write failed", "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	guard := access.NewGuard(r.URL.Query().Get("path"))
	if !send("guard", guard.Decision()) {
		return
	}

	opts := service.SessionProviderOptions{
		Source:  h.Sources(sessionID),
		Metrics: h.Metrics,
		Logger:  h.Logger,
	}
	if sessionID != "" {
		opts.Mirror = h.Mirror
		opts.MirrorKey = service.TokenMirrorKey(sessionID)
	}
	provider := service.NewSessionProvider(opts)
	tracker := service.NewRoleTracker(h.Resolver)

	states := make(chan domainauth.SessionState, 1)
	roles := make(chan appliedRole, 1)
	defer provider.Subscribe(func(st domainauth.SessionState) { offerLatest(states, st) })()
	defer tracker.Subscribe(func(res domainauth.Resolution, gen uint64) {
		offerLatest(roles, appliedRole{res: res, gen: gen})
	})()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	provider.Start(ctx)
	defer provider.Close()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	roleShown := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case st := <-states:
			if !send("guard", guard.Observe(st.Status)) {
				return
			}
			if !st.Present() {
				tracker.Reset()
				if roleShown {
					roleShown = false
					if !send("role", RoleEvent{Decision: access.RouteDashboard(false, domainauth.RoleNone)}) {
						return
					}
				}
				continue
			}
			if !send("role", RoleEvent{Pending: true, Decision: access.RouteDashboard(true, "")}) {
				return
			}
			roleShown = true
			id := st.Identity()
			wg.Add(1)
			go func() {
				defer wg.Done()
				tracker.Resolve(ctx, id)
			}()
		case applied := <-roles:
			// Reset or a newer identity may have landed after this result was applied.
			if !tracker.IsCurrent(applied.gen) {
				continue
			}
			profile := applied.res.Profile
			if !send("role", RoleEvent{
				Role:     applied.res.Role,
				Profile:  &profile,
				Decision: access.RouteDashboard(false, applied.res.Role),
			}) {
				return
			}
			roleShown = true
		}
	}
}

type appliedRole struct {
	res domainauth.Resolution
	gen uint64
}

// offerLatest replaces whatever is buffered in ch with v.
func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	return nil
}
