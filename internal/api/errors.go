package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// fallbackMessage is the last resort when neither the server nor the
// transport produced anything usable.
const fallbackMessage = "could not reach the server"

// APIError is a normalized request failure. Status is the HTTP status
// code, or 0 when no response was received at all.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a rejected-credential (401) failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// ErrorMessage extracts a human-readable message from any error produced
// by the client. Callers branch on this string, never on error types.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}

// errorBody is the shape the backend uses for failures. Some endpoints
// fill "error", others "message"; a few fill both.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// normalizeError builds an APIError from a non-2xx response body.
// Priority order: server "error" field, server "message" field, the
// HTTP status text, then a generic fallback.
func normalizeError(status int, body []byte) *APIError {
	var eb errorBody
	if len(body) > 0 {
		// A non-JSON body is fine; we fall through to the status text.
		_ = json.Unmarshal(body, &eb)
	}

	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fallbackMessage
	}
	return &APIError{Status: status, Message: msg}
}

// normalizeTransportError wraps a failure that produced no response
// (network error, timeout). Timeouts are ordinary failures here, not a
// distinct kind.
func normalizeTransportError(err error) *APIError {
	msg := fallbackMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Status: 0, Message: msg}
}
