package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any *Error carrying a 401.
	ErrUnauthorized = errors.New("session expired or not authenticated")
	// ErrTimeout matches requests that hit the client timeout or a context deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork matches requests that never produced an HTTP response.
	ErrNetwork = errors.New("network error")
)

// Error is the single normalized failure shape of the backend client.
type Error struct {
	Message string
	Status  int
	Raw     []byte
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return e.cause
}

// StatusOf returns the HTTP status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the backend's message for err, lowercased for pattern matching.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return strings.ToLower(apiErr.Message)
	}
	return ""
}

// fromResponse builds an Error from a non-2xx response body.
func fromResponse(status int, body []byte) *Error {
	e := &Error{Status: status, Raw: body, Message: http.StatusText(status)}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			e.Message = payload.Message
		case payload.Error != "":
			e.Message = payload.Error
		case payload.Title != "":
			e.Message = payload.Title
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		e.Message = text
	}
	return e
}

func transportError(cause error, kind error) *Error {
	return &Error{
		Message: fmt.Sprintf("%s: %v", kind, cause),
		cause:   errors.Join(kind, cause),
	}
}
