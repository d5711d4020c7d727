package auth

import (
	"context"
	"errors"
	"testing"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.Error(t, store.Save(ctx, domainauth.Session{}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", Email: "a@b.c"}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", got.Email)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestMemorySessionEvents(t *testing.T) {
	ctx := context.Background()
	bus := NewMemorySessionEvents()

	var got []domainauth.SessionEventKind
	stop, err := bus.Subscribe(ctx, func(ev domainauth.SessionEvent) { got = append(got, ev.Kind) })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionStarted, SessionID: "s"}))
	stop()
	stop()
	require.NoError(t, bus.Publish(ctx, domainauth.SessionEvent{Kind: domainauth.SessionEnded, SessionID: "s"}))

	assert.Equal(t, []domainauth.SessionEventKind{domainauth.SessionStarted}, got)
	assert.Len(t, bus.Published(), 2)
	assert.Zero(t, bus.Subscribers())
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", "v"))
	v, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	kv.FailWith(errors.New("quota"))
	assert.Error(t, kv.Set(ctx, "k", "w"))
	kv.FailWith(nil)
	require.NoError(t, kv.Remove(ctx, "k"))
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{Role: domainauth.RoleClient, ByEmail: map[string]domainauth.Role{"ana@x.com": domainauth.RoleCaregiver}}

	assert.Equal(t, domainauth.RoleNone, r.Resolve(context.Background(), nil).Role)
	assert.Equal(t, domainauth.RoleCaregiver, r.Resolve(context.Background(), &domainauth.Identity{Email: " Ana@X.com"}).Role)
	assert.Equal(t, domainauth.RoleClient, r.Resolve(context.Background(), &domainauth.Identity{Email: "b@x.com"}).Role)
}
