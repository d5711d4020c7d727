package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/adapters/authroles"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/metrics"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// RoleMatcher is one step of the role cascade. A nil resolution means "no match, keep going".
type RoleMatcher interface {
	Name() string
	Match(ctx context.Context, email string) (*domainauth.Resolution, error)
}

// AllowListMatcher grants admin to allow-listed emails without touching any store.
type AllowListMatcher struct {
	List authroles.AllowList
}

func (AllowListMatcher) Name() string { return string(domainauth.SourceAllowList) }

func (m AllowListMatcher) Match(_ context.Context, email string) (*domainauth.Resolution, error) {
	if !m.List.Contains(email) {
		return nil, nil
	}
	return &domainauth.Resolution{
		Role:    domainauth.RoleAdmin,
		Profile: domainauth.RoleProfile{Source: domainauth.SourceAllowList, Email: email},
	}, nil
}

// ProfileMatcher reads the role marker stored on the user's profile. A profile whose
// marker is missing or unrecognised does not match.
type ProfileMatcher struct {
	Store ports.ProfileStore
}

func (ProfileMatcher) Name() string { return string(domainauth.SourceProfiles) }

func (m ProfileMatcher) Match(ctx context.Context, email string) (*domainauth.Resolution, error) {
	profile, err := m.Store.FindByEmail(ctx, email)
	if err != nil || profile == nil {
		return nil, err
	}
	role, ok := domainauth.ParseUserRole(profile.UserRole)
	if !ok {
		return nil, nil
	}
	return &domainauth.Resolution{Role: role, Profile: *profile}, nil
}

// CandidateMatcher treats any caregiver application on file as a caregiver,
// whatever its review status.
type CandidateMatcher struct {
	Store ports.CandidateStore
}

func (CandidateMatcher) Name() string { return string(domainauth.SourceCandidates) }

func (m CandidateMatcher) Match(ctx context.Context, email string) (*domainauth.Resolution, error) {
	candidate, err := m.Store.FindByEmail(ctx, email)
	if err != nil || candidate == nil {
		return nil, err
	}
	return &domainauth.Resolution{Role: domainauth.RoleCaregiver, Profile: *candidate}, nil
}

// RoleResolverOptions groups dependencies for RoleResolver.
type RoleResolverOptions struct {
	AllowList  authroles.AllowList
	Profiles   ports.ProfileStore
	Candidates ports.CandidateStore
	// Matchers replaces the default allow-list, profiles, candidates cascade when set.
	Matchers []RoleMatcher
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// RoleResolver runs the role cascade: admin allow-list, profiles, candidates, then client.
// Lookup failures are logged and counted, then treated as "no match" so the cascade
// always terminates with a role. Concurrent resolutions for one email share a single
// cascade run.
type RoleResolver struct {
	matchers []RoleMatcher
	metrics  statsd.Sink
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

var _ ports.RoleResolver = (*RoleResolver)(nil)

// NewRoleResolver constructs a RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) *RoleResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	matchers := opts.Matchers
	if len(matchers) == 0 {
		matchers = []RoleMatcher{AllowListMatcher{List: opts.AllowList}}
		if opts.Profiles != nil {
			matchers = append(matchers, ProfileMatcher{Store: opts.Profiles})
		}
		if opts.Candidates != nil {
			matchers = append(matchers, CandidateMatcher{Store: opts.Candidates})
		}
	}
	return &RoleResolver{
		matchers: matchers,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "role_resolver"),
		now:      time.Now,
	}
}

// Resolve returns the role for id. A nil identity, or one without an email, has no role.
func (r *RoleResolver) Resolve(ctx context.Context, id *domainauth.Identity) domainauth.Resolution {
	if id == nil || strings.TrimSpace(id.Email) == "" {
		return domainauth.NoRole()
	}
	key := domainauth.NormalizeEmail(id.Email)
	start := r.now()

	flight := r.group.DoChan(key, func() (any, error) {
		return r.cascade(ctx, key)
	})
	var out singleflight.Result
	select {
	case <-ctx.Done():
		// Superseded callers leave the shared run to the others.
		return domainauth.NoRole()
	case out = <-flight:
	}
	res, _ := out.Val.(domainauth.Resolution)
	if err := out.Err; err != nil {
		// The shared run was cut short by its caller's context. Callers that are still
		// live run their own cascade rather than inherit a truncated answer.
		if ctx.Err() != nil {
			return domainauth.NoRole()
		}
		if res, err = r.cascade(ctx, key); err != nil {
			return domainauth.NoRole()
		}
	}

	metrics.EmitRoleResolution(r.metrics, metrics.RoleMetric{
		Role:     string(res.Role),
		Source:   string(res.Profile.Source),
		Duration: r.now().Sub(start),
	})
	r.logger.DebugContext(ctx, "role resolved",
		"email", key, "role", res.Role, "source", res.Profile.Source)
	return res
}

// cascade looks the normalized email up in each matcher in order. The only error it
// returns is a cancellation of ctx; store failures fall through to the next step.
func (r *RoleResolver) cascade(ctx context.Context, key string) (domainauth.Resolution, error) {
	for _, m := range r.matchers {
		res, err := m.Match(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domainauth.Resolution{}, ctxErr
			}
			metrics.EmitLookupError(r.metrics, m.Name(), err)
			r.logger.WarnContext(ctx, "role lookup failed, continuing cascade",
				"step", m.Name(), "email", key, "error", err)
			continue
		}
		if res != nil {
			return *res, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return domainauth.Resolution{}, err
	}
	return domainauth.Resolution{
		Role:    domainauth.RoleClient,
		Profile: domainauth.RoleProfile{Source: domainauth.SourceDefault, Email: key},
	}, nil
}
