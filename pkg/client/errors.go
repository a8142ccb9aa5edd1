package client

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx HTTP response from the API.
type APIError struct {
	StatusCode int
	Message    string // body "message", or "HTTP <status>"
	Payload    any    // parsed body, raw text, or nil
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a transport failure: no response reached the client.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network error"
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// ErrorMessage returns user-facing text for err, without the package prefixes
// added while it was wrapped.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	return err.Error()
}

func statusMessage(code int) string {
	return fmt.Sprintf("HTTP %d", code)
}
