// Package errors provides custom error types and utilities for bootbridge.
//
// This package provides error handling for various operations including:
// - Handshake errors (missing token, missing ticket, failed request)
// - Configuration errors
// - HTTP errors
// - Validation errors
// - Multi-error handling
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories for bootbridge operations
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("configuration error")

	ErrMissingToken  = errors.New("missing anti-forgery token")
	ErrMissingTicket = errors.New("missing authentication ticket")
	ErrRequestFailed = errors.New("request failed")
)

// HandshakeKind is the closed set of ways a handshake step can fail.
type HandshakeKind int

const (
	// KindMissingToken means the anti-forgery response header was absent or empty.
	KindMissingToken HandshakeKind = iota + 1
	// KindMissingTicket means the authentication ticket response header was absent or empty.
	KindMissingTicket
	// KindRequestFailed means the request never produced a response.
	KindRequestFailed
)

func (k HandshakeKind) String() string {
	switch k {
	case KindMissingToken:
		return "MissingToken"
	case KindMissingTicket:
		return "MissingTicket"
	case KindRequestFailed:
		return "RequestFailed"
	default:
		return fmt.Sprintf("HandshakeKind(%d)", int(k))
	}
}

func (k HandshakeKind) sentinel() error {
	switch k {
	case KindMissingToken:
		return ErrMissingToken
	case KindMissingTicket:
		return ErrMissingTicket
	case KindRequestFailed:
		return ErrRequestFailed
	default:
		return nil
	}
}

// HandshakeError represents a failed step of the credential handshake
type HandshakeError struct {
	Kind HandshakeKind
	Step string
	URL  string
	Err  error
}

func (e *HandshakeError) Error() string {
	msg := fmt.Sprintf("handshake step '%s' failed: %s", e.Step, e.Kind.sentinel())
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

func (e *HandshakeError) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && errors.Is(target, sentinel)
}

// NewHandshakeError creates a new handshake error
func NewHandshakeError(kind HandshakeKind, step, url string, err error) *HandshakeError {
	return &HandshakeError{
		Kind: kind,
		Step: step,
		URL:  url,
		Err:  err,
	}
}

// KindOf returns the handshake kind carried by err, if any
func KindOf(err error) (HandshakeKind, bool) {
	var hsErr *HandshakeError
	if errors.As(err, &hsErr) {
		return hsErr.Kind, true
	}
	return 0, false
}

// IsMissingToken checks if an error reports an absent anti-forgery token
func IsMissingToken(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

// IsMissingTicket checks if an error reports an absent authentication ticket
func IsMissingTicket(err error) bool {
	return errors.Is(err, ErrMissingTicket)
}

// IsRequestFailed checks if an error reports a request that never got a response
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrConfiguration)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, value, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidInput)
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// IsValidation checks if an error is validation-related
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// HTTPError represents an HTTP-related error
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d %s %s: %s", e.StatusCode, e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s %s", e.StatusCode, e.Method, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Is(target error) bool {
	return e.StatusCode == http.StatusNotFound && errors.Is(target, ErrNotFound)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, method, url, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Message:    message,
	}
}

// MultiError represents multiple errors that occurred together
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// Join creates a MultiError from multiple errors, filtering out nils
func Join(errs ...error) error {
	var nonNilErrors []error
	for _, err := range errs {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}

	if len(nonNilErrors) == 0 {
		return nil
	}
	if len(nonNilErrors) == 1 {
		return nonNilErrors[0]
	}

	return &MultiError{Errors: nonNilErrors}
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
