package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireSession turns away requests without a gateway session. Page loads are
// redirected to the login view; API calls get a 401 that names the redirect.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetSession(c) != nil {
				return next(c)
			}
			return LoginRedirect(c, LoginPath)
		}
	}
}

// LoginRedirect sends the browser to target, as a 302 for page loads or as JSON for
// calls made by the page's scripts.
func LoginRedirect(c echo.Context, target string) error {
	if WantsJSON(c) {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":    GetPrinter(c).T("error.session_expired"),
			"code":     http.StatusUnauthorized,
			"redirect": target,
		})
	}
	return c.Redirect(http.StatusFound, target)
}

// WantsJSON reports whether the request came from a script rather than a navigation.
func WantsJSON(c echo.Context) bool {
	r := c.Request()
	if strings.HasPrefix(r.URL.Path, "/app/") || strings.HasPrefix(r.URL.Path, "/auth/") {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) &&
		!strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
