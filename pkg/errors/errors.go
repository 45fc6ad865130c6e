// Package errors provides custom error types for the interera service.
// These errors enable programmatic error checking, clean HTTP status mapping,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the interera service
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMedia indicates an upload with a content type outside the allowed set
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrSessionRequired indicates that a request is missing its session cookie
	ErrSessionRequired = errors.New("session required")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrAPIKeyInvalid indicates that the provided API key is invalid
	ErrAPIKeyInvalid = errors.New("API key invalid")

	// ErrUpstream indicates that the image generator failed or returned nothing usable
	ErrUpstream = errors.New("upstream generation failed")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// MediaTypeError represents an upload whose content type is not allowed
type MediaTypeError struct {
	ContentType string
	Allowed     []string
}

// Error implements the error interface
func (e *MediaTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q (allowed: %s)", e.ContentType, strings.Join(e.Allowed, ", "))
}

// Is implements errors.Is support
func (e *MediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMedia
}

// NewMediaTypeError creates a new MediaTypeError
func NewMediaTypeError(contentType string, allowed []string) *MediaTypeError {
	return &MediaTypeError{ContentType: contentType, Allowed: allowed}
}

// SessionError represents a request that lacks a usable session
type SessionError struct {
	Message string
}

// Error implements the error interface
func (e *SessionError) Error() string {
	return fmt.Sprintf("session error: %s", e.Message)
}

// Is implements errors.Is support
func (e *SessionError) Is(target error) bool {
	return target == ErrSessionRequired
}

// NewSessionError creates a new SessionError
func NewSessionError(message string) *SessionError {
	return &SessionError{Message: message}
}

// UpstreamError represents a failure of the image generation backend
type UpstreamError struct {
	Provider  string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("upstream error from %s during %s: %s", e.Provider, e.Operation, e.Message)
	}
	return fmt.Sprintf("upstream error from %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(provider, operation, message string, err error) *UpstreamError {
	return &UpstreamError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	Method  string // "api_key", "session", etc.
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAPIKeyRequired || target == ErrAPIKeyInvalid
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// RateLimitError represents a rejected request due to rate limiting
type RateLimitError struct {
	Limit   int
	Message string
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("rate limit of %d requests per minute exceeded: %s", e.Limit, e.Message)
	}
	return fmt.Sprintf("rate limit exceeded: %s", e.Message)
}

// Is implements errors.Is support
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(limit int, message string) *RateLimitError {
	return &RateLimitError{Limit: limit, Message: message}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsupportedMedia checks if an error is an unsupported media type error
func IsUnsupportedMedia(err error) bool {
	return errors.Is(err, ErrUnsupportedMedia)
}

// IsSessionRequired checks if an error indicates a missing session
func IsSessionRequired(err error) bool {
	return errors.Is(err, ErrSessionRequired)
}

// IsAPIKeyError checks if an error is related to API keys
func IsAPIKeyError(err error) bool {
	return errors.Is(err, ErrAPIKeyRequired) || errors.Is(err, ErrAPIKeyInvalid)
}

// IsUpstream checks if an error came from the image generation backend
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapUpstream wraps an error as an UpstreamError
func WrapUpstream(provider, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{
		Provider:  provider,
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}
