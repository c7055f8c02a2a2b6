package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeEmbeddingProvider ErrorType = "embedding_provider"
	ErrorTypeParse             ErrorType = "parse"
	ErrorTypeSearch            ErrorType = "search"
	ErrorTypeConfiguration     ErrorType = "configuration"
	ErrorTypeInternal          ErrorType = "internal"
)

// Kind returns the name callers see for this error type in response bodies
// and log lines.
func (t ErrorType) Kind() string {
	switch t {
	case ErrorTypeValidation:
		return "InvalidInput"
	case ErrorTypeEmbeddingProvider:
		return "EmbeddingProviderError"
	case ErrorTypeParse:
		return "ParseError"
	case ErrorTypeSearch:
		return "SearchError"
	case ErrorTypeConfiguration:
		return "ConfigurationError"
	default:
		return "InternalError"
	}
}

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Derive returns a fresh error with e's type and message wrapping err, so
// request-specific details never land on a shared sentinel.
func (e *DomainError) Derive(err error) *DomainError {
	return NewDomainError(e.Type, e.Message, err)
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation Errors
	ErrEmptyQuery       = NewDomainError(ErrorTypeValidation, "query must be a non-empty string", nil)
	ErrInvalidTopK      = NewDomainError(ErrorTypeValidation, "topK out of range", nil)
	ErrInvalidThreshold = NewDomainError(ErrorTypeValidation, "threshold must be between 0 and 1", nil)

	// Search Errors
	ErrSearchFailed = NewDomainError(ErrorTypeSearch, "similarity search failed", nil)

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

func hasType(err error, errType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errType
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsEmbeddingProviderError checks if an error came from the embedding provider call
func IsEmbeddingProviderError(err error) bool {
	return hasType(err, ErrorTypeEmbeddingProvider)
}

// IsParseError checks if an error came from parsing provider output
func IsParseError(err error) bool {
	return hasType(err, ErrorTypeParse)
}

// IsSearchError checks if an error is a similarity search error
func IsSearchError(err error) bool {
	return hasType(err, ErrorTypeSearch)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// GetErrorMessage returns the caller-safe message of a domain error. Wrapped
// causes are not included.
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

// WrapEmbeddingProvider wraps an error as an embedding provider error
func WrapEmbeddingProvider(message string, err error) error {
	return NewDomainError(ErrorTypeEmbeddingProvider, message, err)
}

// WrapParse wraps an error as a provider output parse error
func WrapParse(message string, err error) error {
	return NewDomainError(ErrorTypeParse, message, err)
}

// WrapConfiguration wraps an error as a configuration error
func WrapConfiguration(message string, err error) error {
	return NewDomainError(ErrorTypeConfiguration, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
