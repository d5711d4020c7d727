package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// gatedResolver returns the role for an email only once its gate is opened, or
// NoRole when the context is canceled first.
type gatedResolver struct {
	gates   map[string]chan struct{}
	roles   map[string]domainauth.Role
	started chan string
}

func (g *gatedResolver) Resolve(ctx context.Context, id *domainauth.Identity) domainauth.Resolution {
	g.started <- id.Email
	select {
	case <-g.gates[id.Email]:
		return domainauth.Resolution{Role: g.roles[id.Email]}
	case <-ctx.Done():
		return domainauth.NoRole()
	}
}

func TestRoleTracker_ApplyAndCurrent(t *testing.T) {
	g := &gatedResolver{
		gates:   map[string]chan struct{}{"a@x.com": make(chan struct{})},
		roles:   map[string]domainauth.Role{"a@x.com": domainauth.RoleCaregiver},
		started: make(chan string, 1),
	}
	close(g.gates["a@x.com"])
	tr := NewRoleTracker(g)

	cur, pending := tr.Current()
	assert.Equal(t, domainauth.RoleNone, cur.Role)
	assert.False(t, pending)

	res, applied := tr.Resolve(context.Background(), &domainauth.Identity{Email: "a@x.com"})
	assert.True(t, applied)
	assert.Equal(t, domainauth.RoleCaregiver, res.Role)

	cur, pending = tr.Current()
	assert.Equal(t, domainauth.RoleCaregiver, cur.Role)
	assert.False(t, pending)
}

func TestRoleTracker_StaleResultDiscarded(t *testing.T) {
	g := &gatedResolver{
		gates: map[string]chan struct{}{
			"old@x.com": make(chan struct{}),
			"new@x.com": make(chan struct{}),
		},
		roles: map[string]domainauth.Role{
			"old@x.com": domainauth.RoleAdmin,
			"new@x.com": domainauth.RoleClient,
		},
		started: make(chan string, 2),
	}
	tr := NewRoleTracker(g)
	var delivered []domainauth.Role
	defer tr.Subscribe(func(res domainauth.Resolution, _ uint64) { delivered = append(delivered, res.Role) })()

	type outcome struct {
		res     domainauth.Resolution
		applied bool
	}
	oldDone := make(chan outcome, 1)
	go func() {
		res, applied := tr.Resolve(context.Background(), &domainauth.Identity{Email: "old@x.com"})
		oldDone <- outcome{res, applied}
	}()
	<-g.started

	_, pending := tr.Current()
	assert.True(t, pending)

	newDone := make(chan outcome, 1)
	go func() {
		res, applied := tr.Resolve(context.Background(), &domainauth.Identity{Email: "new@x.com"})
		newDone <- outcome{res, applied}
	}()
	<-g.started

	// The superseded lookup is canceled and must not become current.
	old := <-oldDone
	assert.False(t, old.applied)

	close(g.gates["new@x.com"])
	latest := <-newDone
	assert.True(t, latest.applied)

	cur, pending := tr.Current()
	assert.Equal(t, domainauth.RoleClient, cur.Role)
	assert.False(t, pending)
	assert.Equal(t, []domainauth.Role{domainauth.RoleClient}, delivered)
}

func TestRoleTracker_ResetAbandonsInFlight(t *testing.T) {
	g := &gatedResolver{
		gates:   map[string]chan struct{}{"a@x.com": make(chan struct{})},
		roles:   map[string]domainauth.Role{"a@x.com": domainauth.RoleAdmin},
		started: make(chan string, 1),
	}
	tr := NewRoleTracker(g)

	done := make(chan bool, 1)
	go func() {
		_, applied := tr.Resolve(context.Background(), &domainauth.Identity{Email: "a@x.com"})
		done <- applied
	}()
	<-g.started
	tr.Reset()

	assert.False(t, <-done)
	cur, pending := tr.Current()
	assert.Equal(t, domainauth.NoRole(), cur)
	assert.False(t, pending)
}

func TestRoleTracker_DeliveredResultGoesStaleAfterReset(t *testing.T) {
	g := &gatedResolver{
		gates:   map[string]chan struct{}{"a@x.com": make(chan struct{})},
		roles:   map[string]domainauth.Role{"a@x.com": domainauth.RoleCaregiver},
		started: make(chan string, 1),
	}
	close(g.gates["a@x.com"])
	tr := NewRoleTracker(g)

	var gens []uint64
	defer tr.Subscribe(func(_ domainauth.Resolution, gen uint64) { gens = append(gens, gen) })()

	_, applied := tr.Resolve(context.Background(), &domainauth.Identity{Email: "a@x.com"})
	assert.True(t, applied)
	if assert.Len(t, gens, 1) {
		assert.True(t, tr.IsCurrent(gens[0]))
		tr.Reset()
		assert.False(t, tr.IsCurrent(gens[0]))
	}
}
