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

const profileByEmailQuery = `
	SELECT id::text, email, full_name, user_role
	FROM profiles
	WHERE email = $1
	LIMIT 1`

const profileUpsertQuery = `
	INSERT INTO profiles (email, full_name, user_role, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (email) DO UPDATE
	SET full_name = EXCLUDED.full_name, user_role = EXCLUDED.user_role`

type profileRow struct {
	ID       string
	Email    string
	FullName *string
	UserRole *string
}

// ProfileRepo reads and seeds the profiles table.
type ProfileRepo struct {
	run          pgxutil.Runner
	timeProvider TimeProvider
}

// NewProfileRepo creates a ProfileRepo over a database/sql pool.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{run: pgxutil.SQLRunner(db), timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithQuerier creates a ProfileRepo bound to a single Querier (tests, transactions).
func NewProfileRepoWithQuerier(q pgxutil.Querier, tp TimeProvider) *ProfileRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ProfileRepo{run: pgxutil.StaticRunner(q), timeProvider: tp}
}

// FindByEmail returns the profile for email, or nil, nil when none exists.
func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*domainauth.RoleProfile, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	var row profileRow
	err := r.run(ctx, func(q pgxutil.Querier) error {
		rows, err := q.Query(ctx, profileByEmailQuery, email)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByPos[profileRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by email: %w", apperrors.MapDBError(err))
	}

	return &domainauth.RoleProfile{
		Source:   domainauth.SourceProfiles,
		ID:       row.ID,
		Email:    row.Email,
		FullName: deref(row.FullName),
		UserRole: deref(row.UserRole),
	}, nil
}

// UpsertProfileRequest is the seed/admin write shape for a profile.
type UpsertProfileRequest struct {
	Email    string
	FullName string
	UserRole string // empty stores NULL
}

// Upsert inserts or updates the profile keyed by email.
func (r *ProfileRepo) Upsert(ctx context.Context, req UpsertProfileRequest) error {
	email := domainauth.NormalizeEmail(req.Email)
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	role := nullIfEmpty(strings.TrimSpace(req.UserRole))
	err := r.run(ctx, func(q pgxutil.Querier) error {
		_, err := q.Exec(ctx, profileUpsertQuery, email, strings.TrimSpace(req.FullName), role, r.timeProvider.Now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert profile: %w", apperrors.MapDBError(err))
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
