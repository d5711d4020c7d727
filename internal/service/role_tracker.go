package service

import (
	"context"
	"sync"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// RoleTracker keeps the current role for one viewer across identity changes.
// Each Resolve supersedes the previous one: the earlier lookup is canceled and its
// result, if it still arrives, is discarded.
type RoleTracker struct {
	resolver ports.RoleResolver

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current domainauth.Resolution
	pending bool
	subs    map[int]func(domainauth.Resolution, uint64)
	nextSub int
}

// NewRoleTracker constructs a RoleTracker with no role and nothing pending.
func NewRoleTracker(resolver ports.RoleResolver) *RoleTracker {
	return &RoleTracker{
		resolver: resolver,
		current:  domainauth.NoRole(),
		subs:     make(map[int]func(domainauth.Resolution, uint64)),
	}
}

// Resolve runs the resolver for id and applies the result unless a newer Resolve or
// Reset happened meanwhile. applied reports whether the result became current.
func (t *RoleTracker) Resolve(ctx context.Context, id *domainauth.Identity) (res domainauth.Resolution, applied bool) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.pending = true
	t.mu.Unlock()
	defer cancel()

	res = t.resolver.Resolve(runCtx, id)

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return res, false
	}
	t.current = res
	t.pending = false
	t.cancel = nil
	fns := make([]func(domainauth.Resolution, uint64), 0, len(t.subs))
	for id := 0; id < t.nextSub; id++ {
		if fn, ok := t.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(res, gen)
	}
	return res, true
}

// Subscribe registers fn for applied results along with their generation. Discarded
// stale results are never delivered; a delivered result may still be superseded
// before the subscriber acts on it, which IsCurrent reports.
func (t *RoleTracker) Subscribe(fn func(res domainauth.Resolution, gen uint64)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Reset abandons any in-flight resolution and clears the role, e.g. on sign-out.
func (t *RoleTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.current = domainauth.NoRole()
	t.pending = false
}

// IsCurrent reports whether no Resolve or Reset has happened since the result
// stamped with gen was applied.
func (t *RoleTracker) IsCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

// Current returns the last applied resolution and whether a newer one is in flight.
func (t *RoleTracker) Current() (domainauth.Resolution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.pending
}
