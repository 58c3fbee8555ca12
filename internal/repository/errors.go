package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// Common repository errors
var (
	// ErrTransport is returned when the backend could not be reached or the connection broke mid-request
	ErrTransport = errors.New("backend unreachable")

	// ErrNoToken is returned when no access token is available for the request
	ErrNoToken = errors.New("no access token")
)

// APIError is a non-2xx answer from the backend. Message is the server's text, unmodified.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsValidation reports a 4xx rejection of the submitted data.
func IsValidation(err error) bool {
	s := statusOf(err)
	if s < 400 || s >= 500 {
		return false
	}
	return s != http.StatusUnauthorized && s != http.StatusForbidden && s != http.StatusNotFound
}

// ServerMessage returns the backend's own message for err, if it sent one.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
