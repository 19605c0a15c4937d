// internal/http/router.go
package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visa-tracker/internal/app"
	"visa-tracker/internal/common/config"
	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/observability"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// HeaderAdminToken carries the session token returned by the admin login.
const HeaderAdminToken = "X-Admin-Token"

const (
	loginAttemptsPerMinute = 5
	shutdownTimeout        = 10 * time.Second
)

type Options struct {
	AppName      string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
	// Ready reports whether durable storage is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// OptionsFromConfig maps the server section of the configuration onto router options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		AllowOrigins: cfg.Server.AllowOrigins,
	}
}

// Server holds the handler dependencies.
type Server struct {
	app   *app.App
	obs   *observability.Observability
	log   logger.Logger
	errs  *apperrors.ErrorHandler
	ready func(ctx context.Context) error
}

// NewRouter builds the fiber application serving the tracker API.
func NewRouter(a *app.App, obs *observability.Observability, log logger.Logger, opts Options) *fiber.App {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.Component("http")

	s := &Server{
		app:   a,
		obs:   obs,
		log:   log,
		errs:  apperrors.NewErrorHandler(log),
		ready: opts.Ready,
	}

	f := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		BodyLimit:             opts.BodyLimit,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	f.Use(requestid.New())
	f.Use(s.observe)
	f.Use(recover.New())
	f.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + HeaderAdminToken,
	}))

	s.routes(f)
	return f
}

func (s *Server) routes(f *fiber.App) {
	f.Get("/health", s.health)
	f.Get("/ready", s.readiness)
	f.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := f.Group("/api")
	api.Get("/applications", s.listApplications)
	api.Get("/applications/:id", s.getApplication)
	api.Get("/filters", s.filters)
	api.Get("/catalog", s.catalog)
	api.Get("/home", s.home)
	api.Get("/dashboard", s.dashboard)
	api.Get("/statistics", s.statistics)
	api.Get("/trend", s.trend)
	api.Get("/update-info", s.updateInfo)

	api.Get("/preferences/dark-mode", s.getDarkMode)
	api.Put("/preferences/dark-mode", s.putDarkMode)
	api.Post("/preferences/dark-mode/toggle", s.toggleDarkMode)

	api.Get("/export/csv", s.download(formatCSV))
	api.Get("/export/json", s.download(formatJSON))

	admin := api.Group("/admin")
	admin.Post("/login", limiter.New(limiter.Config{
		Max:        loginAttemptsPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "TOO_MANY_REQUESTS",
					"message": "Too many login attempts. Try again in a minute.",
				},
			})
		},
	}), s.login)
	admin.Post("/logout", s.logout)

	guarded := admin.Group("", s.requireAdmin)
	guarded.Post("/applications", s.createApplication)
	guarded.Patch("/applications/:id", s.updateApplication)
	guarded.Delete("/applications/:id", s.deleteApplication)
	guarded.Post("/import", s.importRecords)
	guarded.Post("/reset", s.reset)
	guarded.Post("/exports/:format", s.export)
}

// ==========================
// Middleware
// ==========================

// observe resolves handler errors in place so the final status is known, then records
// the request under its matched route.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	if chainErr := c.Next(); chainErr != nil {
		if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	elapsed := time.Since(start)
	s.obs.RecordRequest(c.UserContext(), c.Method(), c.Route().Path, status, elapsed)

	s.log.Debug("request served", map[string]interface{}{
		"method":      c.Method(),
		"path":        c.Path(),
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
		"request_id":  c.GetRespHeader(fiber.HeaderXRequestID),
	})
	return nil
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if !s.app.Gate.Valid(c.Get(HeaderAdminToken)) {
		return apperrors.NewUnauthorizedError("missing or expired admin session")
	}
	return c.Next()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    routeErrorCode(fe.Code),
				"message": fe.Message,
			},
		})
	}

	status, body := s.errs.Handle(c.Method(), c.Path(), err)
	return c.Status(status).JSON(body)
}

func routeErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "HTTP_ERROR"
	}
}

// Shutdown stops f, waiting for in-flight requests up to a fixed grace period.
func Shutdown(f *fiber.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return f.ShutdownWithContext(ctx)
}
