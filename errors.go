package apillon

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	// ErrConfigRequired is returned when New is called without a config.
	ErrConfigRequired = errors.New("config is required")
	// ErrAPIKeyRequired is returned when the API key is missing.
	ErrAPIKeyRequired = errors.New("api key is required")
	// ErrAPISecretRequired is returned when the API secret is missing.
	ErrAPISecretRequired = errors.New("api secret is required")
	// ErrInvalidInput is returned when request validation fails before anything is sent.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrSessionNotEnded is returned when the server does not confirm the end of an upload session.
var ErrSessionNotEnded = &ProtocolError{Message: "upload session did not end"}

// APIError represents a non-2xx response from the API or a pre-signed upload target.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.Path != "" {
		return "api error: " + strconv.Itoa(e.StatusCode) + " " + e.Path + " - " + msg
	}
	return "api error: " + strconv.Itoa(e.StatusCode) + " - " + msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the key/secret pair is rejected (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the credentials lack permission (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrValidation is returned when the API rejects the request body (422).
	ErrValidation = &APIError{StatusCode: http.StatusUnprocessableEntity}
)

// FilesystemError is returned when local files cannot be enumerated or read.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return "filesystem: " + e.Path + ": " + e.Err.Error()
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when the API answers with a shape that breaks an expected invariant.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Message
}

// Is matches any *ProtocolError with the same message.
func (e *ProtocolError) Is(target error) bool {
	var t *ProtocolError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == e.Message
}
