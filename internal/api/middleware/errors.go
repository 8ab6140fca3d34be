package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/apiclient"
)

// ErrorBody is the JSON shape of every failed /app and /auth call.
type ErrorBody struct {
	MessageKey string `json:"messageKey"`
	Message    string `json:"message"`
}

// Fail builds an HTTP error carrying the localized message for key.
func Fail(c echo.Context, status int, key string) error {
	return echo.NewHTTPError(status, ErrorBody{MessageKey: key, Message: GetPrinter(c).T(key)})
}

// MessageKey maps a backend failure to the generic message for its kind.
func MessageKey(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "error.session_expired"
	case errors.Is(err, apiclient.ErrTimeout):
		return "error.timeout"
	case errors.Is(err, apiclient.ErrNetwork):
		return "error.network"
	default:
		return "error.generic"
	}
}

// StatusOf picks the gateway status for a backend failure.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apiclient.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apiclient.ErrNetwork):
		return http.StatusBadGateway
	}
	if status := apiclient.StatusOf(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
