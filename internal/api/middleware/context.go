package middleware

import (
	"github.com/labstack/echo/v4"

	"smartentrance/internal/i18n"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/session"
)

// Cookie and header names shared with the browser.
const (
	CookieSession        = "se_session"
	CookieTab            = "se_tab"
	CookieSessionExpired = "se_session_expired"
	CookieRememberEmail  = "se_remember_email"
	HeaderTabID          = "X-Tab-ID"

	LoginPath        = "/login"
	ExpiredLoginPath = "/login?expired=1"
)

const (
	keySession        = "session"
	keyTabID          = "tabID"
	keySelection      = "selection"
	keyServices       = "services"
	keyPrinter        = "printer"
	keySessionExpired = "sessionExpired"
	keySessionEnded   = "sessionEnded"
)

func GetSession(c echo.Context) *session.Session {
	if s, ok := c.Get(keySession).(*session.Session); ok {
		return s
	}
	return nil
}

func GetTabID(c echo.Context) string {
	if id, ok := c.Get(keyTabID).(string); ok {
		return id
	}
	return ""
}

// GetSelection returns the tab's selection store, loaded for this request.
func GetSelection(c echo.Context) *selection.Store {
	if s, ok := c.Get(keySelection).(*selection.Store); ok {
		return s
	}
	return nil
}

// GetServices returns the backend services bound to the session's cookies.
func GetServices(c echo.Context) *services.Services {
	if s, ok := c.Get(keyServices).(*services.Services); ok {
		return s
	}
	return nil
}

// GetPrinter returns the request's message printer, English when unset.
func GetPrinter(c echo.Context) *i18n.Printer {
	if p, ok := c.Get(keyPrinter).(*i18n.Printer); ok {
		return p
	}
	return i18n.NewPrinter(i18n.English)
}

// SessionExpired reports whether the backend rejected the session during this request.
func SessionExpired(c echo.Context) bool {
	expired, _ := c.Get(keySessionExpired).(bool)
	return expired
}

// EndSession marks the session as closed by this request, so its cookies are not
// written back afterwards.
func EndSession(c echo.Context) {
	c.Set(keySessionEnded, true)
}

func sessionEnded(c echo.Context) bool {
	ended, _ := c.Get(keySessionEnded).(bool)
	return ended || SessionExpired(c)
}

// CurrentScope is the tab's scope, NoScope without a session.
func CurrentScope(c echo.Context) selection.Scope {
	if store := GetSelection(c); store != nil {
		return store.Scope()
	}
	return selection.NoScope{}
}
