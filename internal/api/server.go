package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	appmiddleware "smartentrance/internal/api/middleware"
	"smartentrance/internal/api/registry"
	"smartentrance/internal/api/throttle"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/config"
	"smartentrance/internal/i18n"
	"smartentrance/internal/routes"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/session"

	console "smartentrance/internal/utils/logger"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   routes.Dependencies
	checks map[string]HealthCheck
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Options are the stores and clients the server is built on.
type Options struct {
	Sessions   session.Store
	Selections selection.Storage
	Guard      *selection.Guard
	Backend    *apiclient.Client
	Storage    services.Storage
	Limiter    throttle.Limiter
	Checks     map[string]HealthCheck
}

var log = console.New("API-Server")

// NewServer @title SmartEntrance Gateway API
// @version 1.0
// @description Web gateway between the SmartEntrance dashboards and the REST backend.
// @host localhost:8080
// @BasePath /
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	v, err := validator.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}
	e.Validator = v

	if opts.Guard == nil {
		opts.Guard = selection.NewGuard()
	}
	if opts.Limiter == nil {
		opts.Limiter = throttle.NewMemoryLimiter(throttle.Limit{
			Window:      cfg.Session.LoginWindow,
			MaxAttempts: cfg.Session.LoginAttempts,
		})
	}

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.Server.PublicURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderContentLength, appmiddleware.HeaderTabID},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("12M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	e.Use(appmiddleware.Language(i18n.Parse(cfg.I18n.DefaultLanguage), cfg.Server.SecureCookies))
	sessions := appmiddleware.NewSessionMiddleware(appmiddleware.SessionOptions{
		JWTSecret:     cfg.Session.JWTSecret,
		Sessions:      opts.Sessions,
		Backend:       opts.Backend,
		Storage:       opts.Storage,
		Selections:    opts.Selections,
		Guard:         opts.Guard,
		SecureCookies: cfg.Server.SecureCookies,
	})
	e.Use(sessions.Middleware())

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
		checks: opts.Checks,
		deps: routes.Dependencies{
			Sessions: opts.Sessions,
			Backend:  opts.Backend,
			Limiter:  opts.Limiter,
			Registry: registry.New(),
		},
	}

	// Register routes
	s.registerRoutes()
	return s, nil
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	deps := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(c.Request().Context()); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	return c.JSON(code, map[string]interface{}{
		"status":       status,
		"version":      "1.0.0",
		"time":         time.Now().Format(time.RFC3339),
		"dependencies": deps,
	})
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if errors.Is(err, apiclient.ErrUnauthorized) {
		if rerr := appmiddleware.LoginRedirect(c, appmiddleware.ExpiredLoginPath); rerr != nil {
			c.Echo().Logger.Error(rerr)
		}
		return
	}

	var (
		code       = http.StatusInternalServerError
		message    interface{}
		messageKey string
		printer    = appmiddleware.GetPrinter(c)
		ve         validator.ValidationErrors
		he         *echo.HTTPError
	)

	switch {
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = formatValidationErrors(ve, printer)
		messageKey = "validation"
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
		if body, ok := he.Message.(appmiddleware.ErrorBody); ok {
			message = body.Message
			messageKey = body.MessageKey
		}
	case errors.Is(err, apiclient.ErrTimeout), errors.Is(err, apiclient.ErrNetwork):
		code = appmiddleware.StatusOf(err)
		messageKey = appmiddleware.MessageKey(err)
		message = printer.T(messageKey)
	default:
		log.Warn("Unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		messageKey = "error.generic"
		message = printer.T(messageKey)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		body := map[string]interface{}{
			"error": message,
			"code":  code,
			"time":  time.Now().Format(time.RFC3339),
		}
		if messageKey != "" {
			body["messageKey"] = messageKey
		}
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Echo().Logger.Error(err)
	}
}

// Tags whose message takes the tag parameter
var paramTags = map[string]bool{"min": true, "max": true, "gt": true}

// formatValidationErrors renders one localized message per field
func formatValidationErrors(errs validator.ValidationErrors, p *i18n.Printer) map[string]string {
	errMap := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		if ns := err.Namespace(); strings.Count(ns, ".") > 1 {
			// nested fields keep their path below the request struct
			field = ns[strings.Index(ns, ".")+1:]
		}

		key := "validation." + err.Tag()
		if !i18n.Has(key) {
			key = "validation.invalid"
		}
		if paramTags[err.Tag()] {
			errMap[field] = p.T(key, err.Param())
		} else {
			errMap[field] = p.T(key)
		}
	}
	return errMap
}
