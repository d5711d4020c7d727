package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/authroles"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/mocks"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/metrics"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
)

func newTestResolver(t *testing.T) (*RoleResolver, *mocks.MockProfileStore, *mocks.MockCandidateStore, *statsd.Recorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	candidates := mocks.NewMockCandidateStore(ctrl)
	rec := &statsd.Recorder{}
	r := NewRoleResolver(RoleResolverOptions{
		AllowList:  authroles.NewAllowList([]string{"admin@careconnect.com"}),
		Profiles:   profiles,
		Candidates: candidates,
		Metrics:    rec,
	})
	return r, profiles, candidates, rec
}

func identity(email string) *domainauth.Identity {
	return &domainauth.Identity{UserID: "u-1", Email: email}
}

func TestRoleResolver_NoIdentity(t *testing.T) {
	r, _, _, _ := newTestResolver(t)

	assert.Equal(t, domainauth.NoRole(), r.Resolve(context.Background(), nil))
	assert.Equal(t, domainauth.NoRole(), r.Resolve(context.Background(), identity("  ")))
}

func TestRoleResolver_AllowListSkipsStores(t *testing.T) {
	// No expectations are set, so any store call fails the test.
	r, _, _, rec := newTestResolver(t)

	res := r.Resolve(context.Background(), identity(" Admin@CareConnect.com "))

	assert.Equal(t, domainauth.RoleAdmin, res.Role)
	assert.Equal(t, domainauth.SourceAllowList, res.Profile.Source)
	assert.Equal(t, "admin@careconnect.com", res.Profile.Email)

	points := rec.Named(metrics.RoleResolution)
	require.Len(t, points, 1)
	assert.Equal(t, "admin", points[0].Tags["role"])
	assert.Equal(t, "allowlist", points[0].Tags["source"])
}

func TestRoleResolver_ProfileMarkers(t *testing.T) {
	tests := []struct {
		marker string
		want   domainauth.Role
	}{
		{"admin", domainauth.RoleAdmin},
		{"cuidador", domainauth.RoleCaregiver},
		{" Cliente ", domainauth.RoleClient},
	}
	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			r, profiles, _, _ := newTestResolver(t)
			profiles.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(&domainauth.RoleProfile{
				Source:   domainauth.SourceProfiles,
				ID:       "p-1",
				Email:    "ana@example.com",
				UserRole: tt.marker,
			}, nil)

			res := r.Resolve(context.Background(), identity("ana@example.com"))

			assert.Equal(t, tt.want, res.Role)
			assert.Equal(t, "p-1", res.Profile.ID)
		})
	}
}

func TestRoleResolver_UnknownMarkerFallsThroughToCandidates(t *testing.T) {
	r, profiles, candidates, _ := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "bia@example.com").
		Return(&domainauth.RoleProfile{Source: domainauth.SourceProfiles, UserRole: "enfermeira"}, nil)
	candidates.EXPECT().FindByEmail(gomock.Any(), "bia@example.com").Return(nil, nil)

	res := r.Resolve(context.Background(), identity("bia@example.com"))

	assert.Equal(t, domainauth.RoleClient, res.Role)
	assert.Equal(t, domainauth.SourceDefault, res.Profile.Source)
}

func TestRoleResolver_CandidateIsCaregiver(t *testing.T) {
	r, profiles, candidates, _ := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "carla@example.com").Return(nil, nil)
	candidates.EXPECT().FindByEmail(gomock.Any(), "carla@example.com").Return(&domainauth.RoleProfile{
		Source: domainauth.SourceCandidates,
		ID:     "c-9",
		Email:  "carla@example.com",
		Status: "Em análise",
	}, nil)

	res := r.Resolve(context.Background(), identity("carla@example.com"))

	assert.Equal(t, domainauth.RoleCaregiver, res.Role)
	assert.Equal(t, "Em análise", res.Profile.Status)
}

func TestRoleResolver_ProfileTakesPrecedenceOverCandidate(t *testing.T) {
	r, profiles, _, _ := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "dora@example.com").
		Return(&domainauth.RoleProfile{Source: domainauth.SourceProfiles, UserRole: "cliente"}, nil)

	res := r.Resolve(context.Background(), identity("dora@example.com"))

	assert.Equal(t, domainauth.RoleClient, res.Role)
	assert.Equal(t, domainauth.SourceProfiles, res.Profile.Source)
}

func TestRoleResolver_CaregiverProfileWithCandidateRecord(t *testing.T) {
	r, profiles, candidates, _ := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "fabi@example.com").Return(&domainauth.RoleProfile{
		Source:   domainauth.SourceProfiles,
		ID:       "p-7",
		Email:    "fabi@example.com",
		UserRole: "cuidador",
	}, nil)
	candidates.EXPECT().FindByEmail(gomock.Any(), "fabi@example.com").Return(&domainauth.RoleProfile{
		Source: domainauth.SourceCandidates,
		ID:     "c-7",
		Email:  "fabi@example.com",
		Status: "Em análise",
	}, nil).AnyTimes()

	res := r.Resolve(context.Background(), identity("fabi@example.com"))

	assert.Equal(t, domainauth.RoleCaregiver, res.Role)
	assert.Equal(t, domainauth.SourceProfiles, res.Profile.Source)
	assert.Equal(t, "p-7", res.Profile.ID)
	assert.Equal(t, "cuidador", res.Profile.UserRole)
}

func TestRoleResolver_NoRecordsDefaultsToClient(t *testing.T) {
	r, profiles, candidates, _ := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "eva@example.com").Return(nil, nil).Times(2)
	candidates.EXPECT().FindByEmail(gomock.Any(), "eva@example.com").Return(nil, nil).Times(2)

	first := r.Resolve(context.Background(), identity("eva@example.com"))
	second := r.Resolve(context.Background(), identity("eva@example.com"))

	assert.Equal(t, domainauth.Resolution{
		Role:    domainauth.RoleClient,
		Profile: domainauth.RoleProfile{Source: domainauth.SourceDefault, Email: "eva@example.com"},
	}, first)
	assert.Equal(t, first, second)
}

func TestRoleResolver_LookupErrorsDegrade(t *testing.T) {
	r, profiles, candidates, rec := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), "fia@example.com").Return(nil, errors.New("connection refused"))
	candidates.EXPECT().FindByEmail(gomock.Any(), "fia@example.com").
		Return(&domainauth.RoleProfile{Source: domainauth.SourceCandidates, Email: "fia@example.com"}, nil)

	res := r.Resolve(context.Background(), identity("fia@example.com"))

	assert.Equal(t, domainauth.RoleCaregiver, res.Role)
	errs := rec.Named(metrics.RoleLookupError)
	require.Len(t, errs, 1)
	assert.Equal(t, "profiles", errs[0].Tags["step"])
}

func TestRoleResolver_AllStoresFailingStillYieldsClient(t *testing.T) {
	r, profiles, candidates, rec := newTestResolver(t)
	profiles.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))
	candidates.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))

	res := r.Resolve(context.Background(), identity("gil@example.com"))

	assert.Equal(t, domainauth.RoleClient, res.Role)
	assert.Len(t, rec.Named(metrics.RoleLookupError), 2)
}

func TestRoleResolver_CanceledContext(t *testing.T) {
	r, profiles, _, rec := newTestResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	profiles.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (*domainauth.RoleProfile, error) {
			cancel()
			return nil, ctx.Err()
		})

	res := r.Resolve(ctx, identity("hal@example.com"))

	assert.Equal(t, domainauth.NoRole(), res)
	assert.Empty(t, rec.Named(metrics.RoleLookupError), "cancellation is not a lookup failure")
}

// blockingProfiles counts lookups and holds each one until release is closed.
type blockingProfiles struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingProfiles) FindByEmail(ctx context.Context, email string) (*domainauth.RoleProfile, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &domainauth.RoleProfile{Source: domainauth.SourceProfiles, Email: email, UserRole: "cuidador"}, nil
}

func TestRoleResolver_ConcurrentCallsShareOneLookup(t *testing.T) {
	store := &blockingProfiles{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewRoleResolver(RoleResolverOptions{Profiles: store})

	const n = 8
	results := make([]domainauth.Resolution, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = r.Resolve(context.Background(), identity("ines@example.com"))
	}()
	<-store.entered
	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), identity("INES@example.com"))
		}(i)
	}
	// Give the followers a moment to join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, domainauth.RoleCaregiver, res.Role)
	}
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestRoleResolver_LiveCallerRetriesAfterLeaderCanceled(t *testing.T) {
	store := &blockingProfiles{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewRoleResolver(RoleResolverOptions{Profiles: store})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan domainauth.Resolution, 1)
	go func() { leaderDone <- r.Resolve(leaderCtx, identity("joao@example.com")) }()
	<-store.entered

	followerDone := make(chan domainauth.Resolution, 1)
	go func() { followerDone <- r.Resolve(context.Background(), identity("joao@example.com")) }()
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	assert.Equal(t, domainauth.NoRole(), <-leaderDone)

	close(store.release)
	assert.Equal(t, domainauth.RoleCaregiver, (<-followerDone).Role)
}

func TestRoleResolver_CanceledFollowerLeavesSharedLookup(t *testing.T) {
	store := &blockingProfiles{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewRoleResolver(RoleResolverOptions{Profiles: store})

	leaderDone := make(chan domainauth.Resolution, 1)
	go func() { leaderDone <- r.Resolve(context.Background(), identity("lia@example.com")) }()
	<-store.entered

	followerCtx, cancelFollower := context.WithCancel(context.Background())
	followerDone := make(chan domainauth.Resolution, 1)
	go func() { followerDone <- r.Resolve(followerCtx, identity("lia@example.com")) }()
	time.Sleep(20 * time.Millisecond)

	cancelFollower()
	select {
	case res := <-followerDone:
		assert.Equal(t, domainauth.NoRole(), res)
	case <-time.After(time.Second):
		t.Fatal("canceled follower waited on the shared lookup")
	}

	close(store.release)
	assert.Equal(t, domainauth.RoleCaregiver, (<-leaderDone).Role)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestRoleResolver_CustomMatchers(t *testing.T) {
	r := NewRoleResolver(RoleResolverOptions{
		Matchers: []RoleMatcher{AllowListMatcher{List: authroles.NewAllowList([]string{"root@x.com"})}},
	})

	assert.Equal(t, domainauth.RoleAdmin, r.Resolve(context.Background(), identity("root@x.com")).Role)
	assert.Equal(t, domainauth.RoleClient, r.Resolve(context.Background(), identity("x@x.com")).Role)
}
