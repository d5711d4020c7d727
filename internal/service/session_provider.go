package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/metrics"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// TokenMirrorPrefix namespaces the client-visible copy of a viewer's access token.
const TokenMirrorPrefix = "careconnect:auth-token:"

// TokenMirrorKey returns the mirror key for a viewer.
func TokenMirrorKey(viewer string) string { return TokenMirrorPrefix + viewer }

// SessionProviderOptions groups dependencies for SessionProvider.
type SessionProviderOptions struct {
	Source ports.SessionSource
	// Mirror, when set, receives the access token of a present session under MirrorKey
	// and loses it when the session ends. Mirror failures are logged and ignored.
	Mirror    ports.KVStore
	MirrorKey string
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// SessionProvider owns the session state for one viewer. It starts Unknown, settles
// to Present or Absent after the first check, then follows change notifications.
// Subscribers are called outside the lock with the latest state, so a slow or
// racing delivery may repeat a state but never regress to an older one.
type SessionProvider struct {
	source    ports.SessionSource
	mirror    ports.KVStore
	mirrorKey string
	metrics   statsd.Sink
	logger    *slog.Logger

	mu      sync.Mutex
	state   domainauth.SessionState
	version uint64
	subs    map[int]func(domainauth.SessionState)
	nextSub int
	stop    func()
}

// NewSessionProvider constructs a provider in the Unknown state.
func NewSessionProvider(opts SessionProviderOptions) *SessionProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionProvider{
		source:    opts.Source,
		mirror:    opts.Mirror,
		mirrorKey: opts.MirrorKey,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "session_provider"),
		state:     domainauth.SessionState{Status: domainauth.SessionUnknown},
		subs:      make(map[int]func(domainauth.SessionState)),
	}
}

// Start subscribes to session changes, then runs the initial check. The returned
// state is never Unknown. Without a subscription the provider still answers from
// checks.
func (p *SessionProvider) Start(ctx context.Context) domainauth.SessionState {
	stop, err := p.source.OnSessionChange(ctx, func(ev domainauth.SessionEvent) {
		p.handleEvent(ctx, ev)
	})
	if err != nil {
		p.logger.WarnContext(ctx, "session change subscription failed", "error", err)
	} else {
		p.mu.Lock()
		p.stop = stop
		p.mu.Unlock()
	}
	return p.Check(ctx)
}

// Check asks the source for the current session. A failed check settles to Absent.
// The result is dropped if a change notification landed while the check ran.
func (p *SessionProvider) Check(ctx context.Context) domainauth.SessionState {
	p.mu.Lock()
	version := p.version
	p.mu.Unlock()

	sess, err := p.source.CurrentSession(ctx)
	metrics.EmitOutcome(p.metrics, metrics.SessionCheck, err)
	if err != nil {
		p.logger.WarnContext(ctx, "session check failed, treating viewer as signed out", "error", err)
		sess = nil
	}

	next := stateFor(sess)
	if !p.apply(ctx, next, &version) {
		return p.State()
	}
	return next
}

// State returns the current session state.
func (p *SessionProvider) State() domainauth.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for state transitions. fn must not block for long.
func (p *SessionProvider) Subscribe(fn func(domainauth.SessionState)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// SignOut ends the session at the source and settles to Absent locally even if the
// source call fails.
func (p *SessionProvider) SignOut(ctx context.Context) error {
	err := p.source.SignOut(ctx)
	p.apply(ctx, domainauth.SessionState{Status: domainauth.SessionAbsent}, nil)
	return err
}

// Close stops following change notifications.
func (p *SessionProvider) Close() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (p *SessionProvider) handleEvent(ctx context.Context, ev domainauth.SessionEvent) {
	switch ev.Kind {
	case domainauth.SessionEnded:
		p.apply(ctx, domainauth.SessionState{Status: domainauth.SessionAbsent}, nil)
	case domainauth.SessionStarted, domainauth.SessionRefreshed:
		if ev.Session != nil {
			p.apply(ctx, stateFor(ev.Session), nil)
			return
		}
		p.Check(ctx)
	default:
		p.logger.DebugContext(ctx, "ignoring unknown session event", "kind", ev.Kind)
	}
}

// apply installs next. When since is non-nil the update only lands if no other write
// happened after *since was read.
func (p *SessionProvider) apply(ctx context.Context, next domainauth.SessionState, since *uint64) bool {
	p.mu.Lock()
	if since != nil && *since != p.version {
		p.mu.Unlock()
		return false
	}
	p.version++
	p.state = next
	fns := p.subscribersLocked()
	p.mu.Unlock()

	p.syncMirror(ctx, next)
	for _, fn := range fns {
		fn(p.State())
	}
	return true
}

func (p *SessionProvider) subscribersLocked() []func(domainauth.SessionState) {
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domainauth.SessionState), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	return fns
}

func (p *SessionProvider) syncMirror(ctx context.Context, st domainauth.SessionState) {
	if p.mirror == nil || p.mirrorKey == "" {
		return
	}
	var err error
	if tok := st.AccessToken(); tok != "" {
		err = p.mirror.Set(ctx, p.mirrorKey, tok)
	} else {
		err = p.mirror.Remove(ctx, p.mirrorKey)
	}
	metrics.EmitOutcome(p.metrics, metrics.MirrorWrite, err)
	if err != nil {
		p.logger.DebugContext(ctx, "token mirror write failed", "key", p.mirrorKey, "error", err)
	}
}

func stateFor(sess *domainauth.Session) domainauth.SessionState {
	if sess == nil {
		return domainauth.SessionState{Status: domainauth.SessionAbsent}
	}
	s := *sess
	return domainauth.SessionState{Status: domainauth.SessionPresent, Session: &s}
}
