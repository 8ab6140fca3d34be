package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/selection"
)

// bindAndValidate decodes the request into req and runs the validator on it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return c.Validate(req)
}

// backendError turns a failed backend call into the gateway's response. A 401 is passed
// through untouched so the error handler can send the browser to the login view.
func backendError(c echo.Context, err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	return middleware.Fail(c, middleware.StatusOf(err), middleware.MessageKey(err))
}

// rejectedAs maps a backend rejection to a specific message when the backend's status
// or message matches, and to the generic handling otherwise.
func rejectedAs(c echo.Context, err error, key string, statuses []int, fragment string) error {
	status := apiclient.StatusOf(err)
	for _, s := range statuses {
		if status == s {
			return middleware.Fail(c, status, key)
		}
	}
	if status >= 400 && status < 500 && strings.Contains(apiclient.MessageOf(err), fragment) {
		return middleware.Fail(c, status, key)
	}
	return backendError(c, err)
}

// scopedBuilding returns the building the tab's scope points at, from either variant.
func scopedBuilding(c echo.Context) (int64, error) {
	id, ok := selection.BuildingID(middleware.CurrentScope(c))
	if !ok {
		return 0, middleware.Fail(c, http.StatusBadRequest, "error.no_scope")
	}
	return id, nil
}
