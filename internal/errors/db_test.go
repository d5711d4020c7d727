package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_Passthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Error("MapDBError(nil) should be nil")
	}
	plain := errors.New("plain")
	if got := MapDBError(plain); !errors.Is(got, plain) || GetCode(got) != "" {
		t.Errorf("plain error should pass through, got %v", got)
	}
}

func TestMapDBError_Sentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"no rows", pgx.ErrNoRows, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.err)
			if GetCode(got) != tt.code {
				t.Errorf("code = %v, want %v", GetCode(got), tt.code)
			}
			if !errors.Is(got, tt.err) {
				t.Error("cause not preserved")
			}
		})
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
		wantMsg   string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "profiles", ColumnName: "email"},
			wantField: "email",
			wantMsg:   "Profile already exists for this email.",
		},
		{
			name: "detail",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.UniqueViolation,
				TableName: "candidates",
				Detail:    "Key (email)=(ana@example.com) already exists.",
			},
			wantField: "email",
			wantMsg:   "Candidate already exists for this email.",
		},
		{
			name:      "constraint name",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "profiles_email_key"},
			wantField: "email",
			wantMsg:   "Record already exists for this email.",
		},
		{
			name:    "expression index",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "profiles_lower_idx"},
			wantMsg: "Record already exists for this value.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.pgErr)
			if !IsConflict(got) {
				t.Fatalf("expected conflict, got %v", got)
			}
			if GetField(got) != tt.wantField {
				t.Errorf("field = %q, want %q", GetField(got), tt.wantField)
			}
			var appErr *AppError
			if !errors.As(got, &appErr) || appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestMapDBError_Validation(t *testing.T) {
	check := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "profiles_email_check"})
	if !IsValidation(check) || GetField(check) != "email" {
		t.Errorf("check violation = %v (field %q)", check, GetField(check))
	}

	notNull := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "email"})
	if !IsValidation(notNull) || GetField(notNull) != "email" {
		t.Errorf("not-null violation = %v", notNull)
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	got := MapDBError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})
	if GetCode(got) != ErrCodeInternal {
		t.Errorf("code = %v, want internal", GetCode(got))
	}
}
