package devseed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data"
)

type profileRecorder struct {
	got  []data.UpsertProfileRequest
	fail string
}

func (p *profileRecorder) Upsert(_ context.Context, req data.UpsertProfileRequest) error {
	if req.Email == p.fail {
		return errors.New("boom")
	}
	p.got = append(p.got, req)
	return nil
}

type candidateRecorder struct {
	got []data.UpsertCandidateRequest
}

func (c *candidateRecorder) Upsert(_ context.Context, req data.UpsertCandidateRequest) error {
	c.got = append(c.got, req)
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunSeedsEverything(t *testing.T) {
	profiles := &profileRecorder{}
	candidates := &candidateRecorder{}

	err := Run(context.Background(), Services{Profiles: profiles, Candidates: candidates}, quiet())
	require.NoError(t, err)
	assert.Len(t, profiles.got, len(DefaultProfiles()))
	assert.Len(t, candidates.got, len(DefaultCandidates()))
}

func TestRunCountsFailures(t *testing.T) {
	profiles := &profileRecorder{fail: DefaultProfiles()[0].Email}
	candidates := &candidateRecorder{}

	err := Run(context.Background(), Services{Profiles: profiles, Candidates: candidates}, quiet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 seed errors")
	assert.Len(t, profiles.got, len(DefaultProfiles())-1)
	assert.Len(t, candidates.got, len(DefaultCandidates()))
}

func TestDefaultsHaveUniqueEmailsPerTable(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range DefaultProfiles() {
		assert.False(t, seen[p.Email], p.Email)
		seen[p.Email] = true
	}
	seen = map[string]bool{}
	for _, c := range DefaultCandidates() {
		assert.False(t, seen[c.Email], c.Email)
		seen[c.Email] = true
	}
}
