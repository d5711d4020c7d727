package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data/pgxutil"
	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	apperrors "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/errors"
	"github.com/jackc/pgx/v5"
)

// DefaultCandidateStatus is the status a fresh caregiver application starts in.
const DefaultCandidateStatus = "Em análise"

const candidateByEmailQuery = `
	SELECT id::text, email, full_name, status_candidatura
	FROM candidates
	WHERE email = $1
	LIMIT 1`

const candidateUpsertQuery = `
	INSERT INTO candidates (email, full_name, phone, status_candidatura, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (email) DO UPDATE
	SET full_name = EXCLUDED.full_name,
	    phone = EXCLUDED.phone,
	    status_candidatura = EXCLUDED.status_candidatura`

type candidateRow struct {
	ID       string
	Email    string
	FullName *string
	Status   *string
}

// CandidateRepo reads and seeds caregiver applications.
type CandidateRepo struct {
	run          pgxutil.Runner
	timeProvider TimeProvider
}

// NewCandidateRepo creates a CandidateRepo over a database/sql pool.
func NewCandidateRepo(db *sql.DB) *CandidateRepo {
	return &CandidateRepo{run: pgxutil.SQLRunner(db), timeProvider: &RealTimeProvider{}}
}

// NewCandidateRepoWithQuerier creates a CandidateRepo bound to a single Querier.
func NewCandidateRepoWithQuerier(q pgxutil.Querier, tp TimeProvider) *CandidateRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &CandidateRepo{run: pgxutil.StaticRunner(q), timeProvider: tp}
}

// FindByEmail returns the application for email, or nil, nil when none exists.
func (r *CandidateRepo) FindByEmail(ctx context.Context, email string) (*domainauth.RoleProfile, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	var row candidateRow
	err := r.run(ctx, func(q pgxutil.Querier) error {
		rows, err := q.Query(ctx, candidateByEmailQuery, email)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByPos[candidateRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate by email: %w", apperrors.MapDBError(err))
	}

	return &domainauth.RoleProfile{
		Source:   domainauth.SourceCandidates,
		ID:       row.ID,
		Email:    row.Email,
		FullName: deref(row.FullName),
		Status:   deref(row.Status),
	}, nil
}

// UpsertCandidateRequest is the seed/admin write shape for an application.
type UpsertCandidateRequest struct {
	Email    string
	FullName string
	Phone    string
	Status   string // defaults to DefaultCandidateStatus
}

// Upsert inserts or updates the application keyed by email.
func (r *CandidateRepo) Upsert(ctx context.Context, req UpsertCandidateRequest) error {
	email := domainauth.NormalizeEmail(req.Email)
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = DefaultCandidateStatus
	}
	err := r.run(ctx, func(q pgxutil.Querier) error {
		_, err := q.Exec(ctx, candidateUpsertQuery,
			email,
			strings.TrimSpace(req.FullName),
			nullIfEmpty(strings.TrimSpace(req.Phone)),
			status,
			r.timeProvider.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert candidate: %w", apperrors.MapDBError(err))
	}
	return nil
}
