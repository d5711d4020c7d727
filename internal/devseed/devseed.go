// Package devseed loads a small set of profiles and caregiver applications so each
// branch of the role cascade can be exercised locally.
package devseed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// ProfileWriter upserts profile rows.
type ProfileWriter interface {
	Upsert(ctx context.Context, req data.UpsertProfileRequest) error
}

// CandidateWriter upserts caregiver applications.
type CandidateWriter interface {
	Upsert(ctx context.Context, req data.UpsertCandidateRequest) error
}

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Profiles   ProfileWriter
	Candidates CandidateWriter
}

// DefaultProfiles covers an explicit caregiver, an explicit client and a user who
// has not picked a path yet.
func DefaultProfiles() []data.UpsertProfileRequest {
	return []data.UpsertProfileRequest{
		{Email: "ana.cuidadora@careconnect.dev", FullName: "Ana Cuidadora", UserRole: domainauth.MarkerCaregiver},
		{Email: "bruno.cliente@careconnect.dev", FullName: "Bruno Cliente", UserRole: domainauth.MarkerClient},
		{Email: "carla.indecisa@careconnect.dev", FullName: "Carla Indecisa"},
	}
}

// DefaultCandidates covers an application under review, an approved one and one
// that shadows a client profile.
func DefaultCandidates() []data.UpsertCandidateRequest {
	return []data.UpsertCandidateRequest{
		{Email: "diego.candidato@careconnect.dev", FullName: "Diego Candidato", Phone: "+55 11 90000-0001"},
		{Email: "elisa.aprovada@careconnect.dev", FullName: "Elisa Aprovada", Status: "Aprovado"},
		{Email: "carla.indecisa@careconnect.dev", FullName: "Carla Indecisa", Status: "Em análise"},
	}
}

// Run seeds every default row, continuing past individual failures.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	failures := 0

	if svcs.Profiles != nil {
		for _, req := range DefaultProfiles() {
			if err := svcs.Profiles.Upsert(ctx, req); err != nil {
				logger.ErrorContext(ctx, "failed to seed profile", "email", req.Email, "error", err)
				failures++
				continue
			}
			logger.InfoContext(ctx, "seeded profile", "email", req.Email, "user_role", req.UserRole)
		}
	}

	if svcs.Candidates != nil {
		for _, req := range DefaultCandidates() {
			if err := svcs.Candidates.Upsert(ctx, req); err != nil {
				logger.ErrorContext(ctx, "failed to seed candidate", "email", req.Email, "error", err)
				failures++
				continue
			}
			logger.InfoContext(ctx, "seeded candidate", "email", req.Email)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}
