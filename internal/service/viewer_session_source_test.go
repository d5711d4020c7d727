package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

func TestViewerSessionSource_CurrentSession(t *testing.T) {
	f := newAuthFixture()
	sess := f.login(t)

	got, err := NewViewerSessionSource(f.svc, f.events, sess.ID).CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	none, err := NewViewerSessionSource(f.svc, f.events, "").CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, none)

	missing, err := NewViewerSessionSource(f.svc, f.events, "gone").CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestViewerSessionSource_ExpiredReadsAsNoSession(t *testing.T) {
	f := newAuthFixture()
	sess := f.login(t)
	f.svc.now = func() time.Time { return sess.ExpiresAt.Add(time.Minute) }

	got, err := NewViewerSessionSource(f.svc, f.events, sess.ID).CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewerSessionSource_FiltersEventsBySession(t *testing.T) {
	f := newAuthFixture()
	mine := f.login(t)
	other := f.login(t)

	src := NewViewerSessionSource(f.svc, f.events, mine.ID)
	var seen []domainauth.SessionEvent
	stop, err := src.OnSessionChange(context.Background(), func(ev domainauth.SessionEvent) { seen = append(seen, ev) })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, f.svc.Logout(context.Background(), other.ID))
	assert.Empty(t, seen)

	require.NoError(t, src.SignOut(context.Background()))
	require.Len(t, seen, 1)
	assert.Equal(t, domainauth.SessionEnded, seen[0].Kind)
	assert.Equal(t, mine.ID, seen[0].SessionID)
}

func TestViewerSessionSource_DrivesProvider(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	sess := f.login(t)

	p := NewSessionProvider(SessionProviderOptions{Source: NewViewerSessionSource(f.svc, f.events, sess.ID)})
	defer p.Close()
	require.True(t, p.Start(ctx).Present())

	f.roles.ByEmail["mock.user@example.com"] = domainauth.RoleAdmin
	_, err := f.svc.UpdateRole(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, p.State().Session.Role)

	require.NoError(t, f.svc.Logout(ctx, sess.ID))
	assert.Equal(t, domainauth.SessionAbsent, p.State().Status)
}
