package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{name: "without cause", err: NotFound("profile not found"), want: "profile not found"},
		{
			name: "with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "failed to resolve", Cause: errors.New("boom")},
			want: "failed to resolve: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is did not find the cause through AppError")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
	}{
		{NotFound("x"), ErrCodeNotFound},
		{Conflict("x"), ErrCodeConflict},
		{Validation("x"), ErrCodeValidation},
		{Unauthorized("x"), ErrCodeUnauthorized},
		{Internal("x"), ErrCodeInternal},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("code = %v, want %v", tt.err.Code, tt.code)
		}
		if tt.err.Message != "x" {
			t.Errorf("message = %q", tt.err.Message)
		}
	}

	f := ValidationField("email", "email is required")
	if f.Field != "email" || f.Code != ErrCodeValidation {
		t.Errorf("ValidationField() = %+v", f)
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "x"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("down"), ErrCodeTimeout, "lookup %s", "profiles")
	if err.Message != "lookup profiles" || !IsTimeout(err) {
		t.Errorf("Wrapf() = %+v", err)
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Conflict("dup"))

	if !IsConflict(wrapped) {
		t.Error("IsConflict should see through fmt wrapping")
	}
	if IsNotFound(wrapped) || IsValidation(wrapped) || IsUnauthorized(wrapped) {
		t.Error("unexpected predicate match")
	}
	if !IsNotFound(NotFound("x")) || !IsValidation(Validation("x")) || !IsUnauthorized(Unauthorized("x")) {
		t.Error("predicate did not match its own constructor")
	}
	if IsNotFound(errors.New("plain")) || IsNotFound(nil) {
		t.Error("plain errors must not match")
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := fmt.Errorf("handler: %w", ValidationField("email", "bad"))
	if got := GetCode(err); got != ErrCodeValidation {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetField(err); got != "email" {
		t.Errorf("GetField() = %v", got)
	}
	if GetCode(errors.New("plain")) != "" || GetField(nil) != "" {
		t.Error("non-AppError should yield empty code and field")
	}
}
