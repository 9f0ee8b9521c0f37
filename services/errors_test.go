package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeUnauthorized, "bad credentials", baseErr)

	assert.Equal(t, ErrorTypeUnauthorized, domainErr.Type)
	assert.Equal(t, "bad credentials", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeExternal,
				Message: "parking backend unavailable",
				Err:     errors.New("connection refused"),
			},
			wantMsg: "external: parking backend unavailable (connection refused)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeConflict, "taken", nil),
			target: ErrDuplicateUser,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrDuplicateUser,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeConflict, "taken", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		yes   []error
		no    []error
	}{
		{
			name:  "validation",
			check: IsValidationError,
			yes:   []error{ErrInvalidInput, fmt.Errorf("wrapped: %w", ErrRegistrationFailed)},
			no:    []error{ErrUnauthorized, errors.New("regular"), nil},
		},
		{
			name:  "unauthorized",
			check: IsUnauthorizedError,
			yes:   []error{ErrUnauthorized, ErrInvalidCredentials, ErrInvalidToken},
			no:    []error{ErrInvalidInput},
		},
		{
			name:  "forbidden",
			check: IsForbiddenError,
			yes:   []error{ErrForbidden},
			no:    []error{ErrUnauthorized},
		},
		{
			name:  "conflict",
			check: IsConflictError,
			yes:   []error{ErrDuplicateUser},
			no:    []error{ErrInvalidInput},
		},
		{
			name:  "internal",
			check: IsInternalError,
			yes:   []error{ErrInternal, WrapInternal("boom", errors.New("x"))},
			no:    []error{ErrBackendUnavailable},
		},
		{
			name:  "external",
			check: IsExternalError,
			yes:   []error{ErrBackendUnavailable, ErrBackendResponse},
			no:    []error{ErrInternal},
		},
		{
			name:  "not found",
			check: IsNotFoundError,
			yes:   []error{NewDomainError(ErrorTypeNotFound, "lot not found", nil)},
			no:    []error{ErrInvalidInput, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, err := range tt.yes {
				assert.True(t, tt.check(err), "%v", err)
			}
			for _, err := range tt.no {
				assert.False(t, tt.check(err), "%v", err)
			}
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", ErrInvalidInput, ErrorTypeValidation},
		{"conflict", ErrDuplicateUser, ErrorTypeConflict},
		{"external", ErrBackendUnavailable, ErrorTypeExternal},
		{"regular error", errors.New("regular"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "email").WithDetail("reason", "invalid format")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])
	assert.Equal(t, "invalid format", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestWrapError(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := WrapError(ErrorTypeInternal, "wrapped message", baseErr)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, ErrorTypeInternal, domainErr.Type)
	assert.Equal(t, "wrapped message", domainErr.Message)
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}

func TestWrapExternal(t *testing.T) {
	baseErr := errors.New("dial tcp: connection refused")
	wrapped := WrapExternal("login request failed", baseErr)

	assert.True(t, IsExternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
