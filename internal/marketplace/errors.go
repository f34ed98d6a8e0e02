// File: internal/marketplace/errors.go
package marketplace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FallbackErrorMessage is shown when neither the error nor the response explains the failure.
const FallbackErrorMessage = "Registration failed. Please try again."

// UnreachableMessage is shown when the marketplace API could not be reached at all.
const UnreachableMessage = "The marketplace service is unavailable right now. Please try again."

// ErrUnexpectedResponse is wrapped when a 2xx response cannot be understood.
var ErrUnexpectedResponse = errors.New("unexpected marketplace api response")

// UpstreamError is a non-2xx answer from the marketplace API.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("marketplace api %s returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("marketplace api %s returned %d", e.Operation, e.StatusCode)
}

// TransportError wraps failures to reach the API (DNS, refused connection, timeout).
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("marketplace api %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newUpstreamError(op string, status int, body []byte) *UpstreamError {
	return &UpstreamError{
		Operation:  op,
		StatusCode: status,
		Message:    messageFromBody(body),
		Body:       body,
	}
}

// messageFromBody looks for message, then error, then data.message / error.message.
func messageFromBody(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		var s string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	for _, key := range []string{"data", "error", "errors"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
	}
	return ""
}

// ErrorMessage turns any error from this package into a single line a user can read.
// It never returns an empty string for a non-nil error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Message != "" {
			return upErr.Message
		}
		return FallbackErrorMessage
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return UnreachableMessage
	}
	if errors.Is(err, ErrUnexpectedResponse) {
		return FallbackErrorMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
