package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"smartentrance/internal/i18n"
)

// Language picks the response language from the lang query parameter, then the
// language cookie, then Accept-Language. An explicit lang is remembered in the cookie.
func Language(fallback language.Tag, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var cookieValue string
			if ck, err := c.Cookie(i18n.CookieName); err == nil {
				cookieValue = ck.Value
			}
			query := c.QueryParam("lang")

			tag := i18n.Match(fallback, query, cookieValue, c.Request().Header.Get("Accept-Language"))

			if query != "" && i18n.Match(language.Und, query) != language.Und {
				c.SetCookie(&http.Cookie{
					Name:     i18n.CookieName,
					Value:    tag.String(),
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(keyPrinter, i18n.NewPrinter(tag))
			c.Response().Header().Set("Content-Language", tag.String())
			return next(c)
		}
	}
}
