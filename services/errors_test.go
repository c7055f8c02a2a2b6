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
	domainErr := NewDomainError(ErrorTypeSearch, "similarity search failed", baseErr)

	assert.Equal(t, ErrorTypeSearch, domainErr.Type)
	assert.Equal(t, "similarity search failed", domainErr.Message)
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
				Type:    ErrorTypeSearch,
				Message: "similarity search failed",
				Err:     errors.New("connection refused"),
			},
			wantMsg: "search: similarity search failed (connection refused)",
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
			err:    ErrSearchFailed.Derive(errors.New("boom")),
			target: ErrSearchFailed,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrSearchFailed,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeSearch, "search", nil),
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

	err.WithDetail("field", "topK").WithDetail("value", -1)

	assert.Equal(t, "topK", err.Details["field"])
	assert.Equal(t, -1, err.Details["value"])
}

func TestErrorType_Kind(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrorTypeValidation, "InvalidInput"},
		{ErrorTypeEmbeddingProvider, "EmbeddingProviderError"},
		{ErrorTypeParse, "ParseError"},
		{ErrorTypeSearch, "SearchError"},
		{ErrorTypeConfiguration, "ConfigurationError"},
		{ErrorTypeInternal, "InternalError"},
		{ErrorType("unknown"), "InternalError"},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errType.Kind())
		})
	}
}

func TestTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"validation", ErrEmptyQuery, IsValidationError, true},
		{"wrapped validation", fmt.Errorf("wrapped: %w", ErrInvalidTopK), IsValidationError, true},
		{"search is not validation", ErrSearchFailed, IsValidationError, false},
		{"embedding provider", WrapEmbeddingProvider("call failed", errors.New("timeout")), IsEmbeddingProviderError, true},
		{"parse", WrapParse("no array", errors.New("no match")), IsParseError, true},
		{"parse is not provider", WrapParse("no array", nil), IsEmbeddingProviderError, false},
		{"search", ErrSearchFailed.Derive(errors.New("boom")), IsSearchError, true},
		{"configuration", WrapConfiguration("required credential missing", nil), IsConfigurationError, true},
		{"internal", WrapInternal("panic", errors.New("boom")), IsInternalError, true},
		{"regular error", errors.New("regular"), IsInternalError, false},
		{"nil error", nil, IsSearchError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", ErrEmptyQuery, ErrorTypeValidation},
		{"search", ErrSearchFailed, ErrorTypeSearch},
		{"configuration", WrapConfiguration("required credential missing", nil), ErrorTypeConfiguration},
		{"wrapped", fmt.Errorf("ctx: %w", ErrInternal), ErrorTypeInternal},
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
	err.WithDetail("field", "threshold").WithDetail("reason", "out of range")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "threshold", details["field"])
	assert.Equal(t, "out of range", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestGetErrorMessage(t *testing.T) {
	err := ErrSearchFailed.Derive(errors.New("pq: password authentication failed"))

	assert.Equal(t, "similarity search failed", GetErrorMessage(err))
	assert.NotContains(t, GetErrorMessage(err), "password")
	assert.Equal(t, "", GetErrorMessage(errors.New("regular")))
}

func TestDomainError_Derive(t *testing.T) {
	baseErr := errors.New("connection refused")
	derived := ErrSearchFailed.Derive(baseErr).WithDetail("attempt", 1)

	assert.Equal(t, ErrorTypeSearch, derived.Type)
	assert.Equal(t, ErrSearchFailed.Message, derived.Message)
	assert.Equal(t, baseErr, errors.Unwrap(derived))
	assert.True(t, errors.Is(derived, ErrSearchFailed))
	assert.Empty(t, ErrSearchFailed.Details, "sentinel must not collect details")
	assert.Nil(t, ErrSearchFailed.Err)
}

func TestAllErrorVariablesAreDefined(t *testing.T) {
	errorVars := []error{
		ErrEmptyQuery,
		ErrInvalidTopK,
		ErrInvalidThreshold,
		ErrSearchFailed,
		ErrInternal,
	}

	for _, err := range errorVars {
		assert.NotNil(t, err)
		assert.NotEmpty(t, err.Error())
	}
}
