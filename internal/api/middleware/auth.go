package middleware

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/events"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/session"
	"smartentrance/internal/utils"
	"smartentrance/internal/utils/logger"
)

var log = logger.New("session_middleware")

var tabIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// SessionMiddleware attaches the browser's gateway session, its tab, the tab's
// selection and session-bound backend services to each request.
type SessionMiddleware struct {
	jwtSecret     string
	sessions      session.Store
	backend       *apiclient.Client
	storage       services.Storage
	selections    selection.Storage
	guard         *selection.Guard
	secureCookies bool
}

type SessionOptions struct {
	JWTSecret     string
	Sessions      session.Store
	Backend       *apiclient.Client
	Storage       services.Storage
	Selections    selection.Storage
	Guard         *selection.Guard
	SecureCookies bool
}

func NewSessionMiddleware(opts SessionOptions) *SessionMiddleware {
	return &SessionMiddleware{
		jwtSecret:     opts.JWTSecret,
		sessions:      opts.Sessions,
		backend:       opts.Backend,
		storage:       opts.Storage,
		selections:    opts.Selections,
		guard:         opts.Guard,
		secureCookies: opts.SecureCookies,
	}
}

func (m *SessionMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(keyTabID, m.resolveTab(c))

			sess := m.loadSession(c)
			if sess == nil {
				return next(c)
			}

			base := m.backend.BaseURL()
			jar := session.NewJar(base, sess.BackendCookies)
			client := m.backend.WithJar(jar).WithUnauthorizedHandler(m.expireOnce(c, sess))

			store := selection.NewStore(m.selections, SelectionKey(sess.ID, GetTabID(c)), m.guard)
			store.Load(c.Request().Context())

			c.Set(keySession, sess)
			c.Set(keyServices, services.New(client, m.storage))
			c.Set(keySelection, store)

			err := next(c)

			if sessionEnded(c) {
				m.guard.ForgetPrefix(SelectionKey(sess.ID, ""))
				return err
			}
			if sess.Capture(jar, base) {
				if saveErr := m.sessions.Save(context.WithoutCancel(c.Request().Context()), sess); saveErr != nil {
					log.Warn("Failed to persist rotated backend cookies for %s: %v", sess.ID, saveErr)
				}
			}
			return err
		}
	}
}

// SelectionKey is the storage key of one tab's selection.
func SelectionKey(sessionID, tabID string) string {
	return sessionID + ":" + tabID
}

// resolveTab prefers the X-Tab-ID header the page sends, then the tab cookie, and
// mints a new id when neither is usable.
func (m *SessionMiddleware) resolveTab(c echo.Context) string {
	if id := c.Request().Header.Get(HeaderTabID); tabIDPattern.MatchString(id) {
		return id
	}
	if ck, err := c.Cookie(CookieTab); err == nil && tabIDPattern.MatchString(ck.Value) {
		return ck.Value
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     CookieTab,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

func (m *SessionMiddleware) loadSession(c echo.Context) *session.Session {
	ck, err := c.Cookie(CookieSession)
	if err != nil || ck.Value == "" {
		return nil
	}

	claims, err := utils.ParseSessionToken(m.jwtSecret, ck.Value)
	if err != nil {
		log.Debug("Ignoring invalid session cookie: %v", err)
		return nil
	}

	sess, err := m.sessions.Get(c.Request().Context(), claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Warn("Failed to load session %s: %v", claims.SessionID, err)
		return nil
	}
	return sess
}

// expireOnce returns the backend 401 hook for this request. Section fetches run
// concurrently, so only the first 401 acts.
func (m *SessionMiddleware) expireOnce(c echo.Context, sess *session.Session) apiclient.UnauthorizedHandler {
	var once sync.Once
	return func(apiErr *apiclient.Error) {
		once.Do(func() {
			c.Set(keySessionExpired, true)
			MarkSessionExpired(c, m.secureCookies)

			ctx := context.WithoutCancel(c.Request().Context())
			if err := m.sessions.Delete(ctx, sess.ID); err != nil {
				log.Warn("Failed to delete expired session %s: %v", sess.ID, err)
			}
			events.Emit(events.SessionExpired, sess.ID)
			log.Info("Backend rejected session %s: %s", sess.ID, apiErr.Message)
		})
	}
}

// MarkSessionExpired sets the flag the login page reads and drops the session cookie.
func MarkSessionExpired(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieSessionExpired,
		Value:    "1",
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	ClearCookie(c, CookieSession, secure)
}

// ClearCookie expires the named cookie in the browser.
func ClearCookie(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
