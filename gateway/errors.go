package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoResponse wraps transport failures where no HTTP response was received.
	ErrNoResponse = errors.New("no response from server")
	// ErrUnauthenticated is returned when a 401 arrives and there is no refresh token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired is returned when the refresh call fails. The store has been cleared.
	ErrSessionExpired = errors.New("session expired")
)

const defaultErrorMessage = "An error occurred."

// APIError is a non-2xx reply. Body holds the server payload untouched so callers
// can present field level validation errors.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d, message=%s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       body,
	}
}

// errorMessage picks the human readable part of an error payload.
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return defaultErrorMessage
	}
	for _, key := range []string{"message", "detail", "error"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}
	return defaultErrorMessage
}

// StatusCode returns the HTTP status carried by err, or 0 when err holds no APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err carries a 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// FieldErrors returns per-field validation messages from a payload such as
// {"email": ["This field is required."]}. Keys whose values are not string lists are
// skipped.
func (e *APIError) FieldErrors() map[string][]string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return nil
	}
	fields := make(map[string][]string)
	for key, raw := range payload {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil && len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	return fields
}
