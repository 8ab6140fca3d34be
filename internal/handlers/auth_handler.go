package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/throttle"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/config"
	"smartentrance/internal/events"
	"smartentrance/internal/models"
	"smartentrance/internal/services"
	"smartentrance/internal/session"
	"smartentrance/internal/utils"
	"smartentrance/internal/utils/logger"
)

type AuthHandler struct {
	sessions session.Store
	backend  *apiclient.Client
	limiter  throttle.Limiter
	cfg      config.SessionConfig
	secure   bool
	log      *logger.Logger
}

type AuthOptions struct {
	Sessions      session.Store
	Backend       *apiclient.Client
	Limiter       throttle.Limiter
	Session       config.SessionConfig
	SecureCookies bool
}

func NewAuthHandler(opts AuthOptions) *AuthHandler {
	return &AuthHandler{
		sessions: opts.Sessions,
		backend:  opts.Backend,
		limiter:  opts.Limiter,
		cfg:      opts.Session,
		secure:   opts.SecureCookies,
		log:      logger.New("AuthHandler"),
	}
}

// LoginState is the view model of the login page.
type LoginState struct {
	Email          string `json:"email"`
	RememberMe     bool   `json:"rememberMe"`
	SessionExpired bool   `json:"sessionExpired"`
	Message        string `json:"message,omitempty"`
}

// AuthResponse tells the page where to go after signing in.
type AuthResponse struct {
	User     models.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// LoginPage returns the login view model with the remembered email and the
// session-expired notice. The notice is shown once.
// @Summary Login view
// @Description Remembered email and session-expired flag for the login form
// @Tags auth
// @Produce json
// @Success 200 {object} LoginState
// @Success 302 "Already signed in"
// @Router /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sess := middleware.GetSession(c); sess != nil {
		return c.Redirect(http.StatusFound, landingPath(sess.IsManager()))
	}

	var state LoginState
	if ck, err := c.Cookie(middleware.CookieRememberEmail); err == nil && ck.Value != "" {
		state.Email = ck.Value
		state.RememberMe = true
	}

	if ck, err := c.Cookie(middleware.CookieSessionExpired); err == nil && ck.Value != "" {
		state.SessionExpired = true
		middleware.ClearCookie(c, middleware.CookieSessionExpired, h.secure)
	}
	if c.QueryParam("expired") == "1" {
		state.SessionExpired = true
	}
	if state.SessionExpired {
		state.Message = middleware.GetPrinter(c).T("error.session_expired")
	}

	return c.JSON(http.StatusOK, state)
}

// Login signs in against the backend and opens a gateway session
// @Summary Sign in
// @Description Authenticates with the backend and stores its session cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 401 {object} middleware.ErrorBody "Wrong email or password"
// @Failure 429 {object} middleware.ErrorBody "Too many attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)

	ctx := c.Request().Context()
	identifier := utils.GetIPAddress(c.Request()) + "|" + strings.ToLower(req.Email)
	allowed, err := h.limiter.Allow(ctx, identifier)
	if err != nil {
		h.log.Warn("Login throttle unavailable: %v", err)
	} else if !allowed {
		return middleware.Fail(c, http.StatusTooManyRequests, "error.too_many_attempts")
	}

	jar, client := h.freshClient()
	user, err := services.NewAuthService(client).Login(ctx, req)
	if err != nil {
		status := apiclient.StatusOf(err)
		if status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusNotFound {
			return middleware.Fail(c, http.StatusUnauthorized, "error.invalid_login")
		}
		return backendError(c, err)
	}

	if err := h.startSession(c, *user, jar); err != nil {
		return err
	}

	if req.RememberMe {
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieRememberEmail,
			Value:    req.Email,
			Path:     "/",
			MaxAge:   int(h.cfg.RememberMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	} else {
		middleware.ClearCookie(c, middleware.CookieRememberEmail, h.secure)
	}

	h.log.Success("User %s signed in", user.Email)
	return c.JSON(http.StatusOK, AuthResponse{User: *user, Redirect: landingPath(user.IsManager())})
}

// Register creates an account, optionally through an invitation code, and signs in
// @Summary Register
// @Description Creates a backend account and opens a gateway session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	jar, client := h.freshClient()
	user, err := services.NewAuthService(client).Register(c.Request().Context(), req)
	if err != nil {
		if req.InvitationCode != "" {
			return rejectedAs(c, err, "error.invalid_invitation", []int{http.StatusNotFound}, "invalid")
		}
		return backendError(c, err)
	}

	if err := h.startSession(c, *user, jar); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, AuthResponse{User: *user, Redirect: landingPath(user.IsManager())})
}

// Logout ends both the backend and the gateway session
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess != nil {
		middleware.EndSession(c)
		ctx := context.WithoutCancel(c.Request().Context())
		if svc := middleware.GetServices(c); svc != nil {
			if err := svc.Auth.Logout(ctx); err != nil {
				h.log.Warn("Backend logout failed for %s: %v", sess.ID, err)
			}
		}
		if store := middleware.GetSelection(c); store != nil {
			if err := store.Clear(ctx); err != nil {
				h.log.Warn("Failed to clear selection on logout: %v", err)
			}
		}
		if err := h.sessions.Delete(ctx, sess.ID); err != nil {
			h.log.Warn("Failed to delete session %s: %v", sess.ID, err)
		}
		events.Emit(events.SessionEnded, sess.ID)
	}

	middleware.ClearCookie(c, middleware.CookieSession, h.secure)
	return c.JSON(http.StatusOK, map[string]string{"redirect": middleware.LoginPath})
}

// freshClient returns a backend client recording cookies into a new jar.
func (h *AuthHandler) freshClient() (http.CookieJar, *apiclient.Client) {
	jar := session.NewJar(h.backend.BaseURL(), nil)
	return jar, h.backend.WithJar(jar)
}

func (h *AuthHandler) startSession(c echo.Context, user models.User, jar http.CookieJar) error {
	sess := session.New(user, h.cfg.TTL)
	sess.BackendCookies = session.FromJar(jar, h.backend.BaseURL())

	if err := h.sessions.Save(c.Request().Context(), sess); err != nil {
		return h.log.Error("Failed to save session", err)
	}

	token, err := utils.GenerateSessionToken(h.cfg.JWTSecret, sess.ID, h.cfg.TTL)
	if err != nil {
		return h.log.Error("Failed to sign session token", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieSession,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.TTL),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.ClearCookie(c, middleware.CookieSessionExpired, h.secure)

	events.Emit(events.SessionStarted, sess.ID)
	return nil
}

func landingPath(manager bool) string {
	if manager {
		return "/admin/dashboard"
	}
	return "/dashboard"
}
