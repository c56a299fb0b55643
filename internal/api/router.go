package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ansysan/task-management-system/docs"
	"github.com/ansysan/task-management-system/internal/api/handler"
	"github.com/ansysan/task-management-system/internal/api/middleware"
	"github.com/ansysan/task-management-system/internal/core/ports"
	"github.com/ansysan/task-management-system/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Admin    ports.AdminService
	Tasks    ports.TaskService
	Comments ports.CommentService

	Tokens   middleware.TokenVerifier
	Resolver ports.IdentityResolver

	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Checker
	Logger zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. The default
	// Prometheus registry is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(d.Registry)))
	e.Use(middleware.Authenticate(d.Tokens, d.Resolver, d.Logger))

	authOnly := middleware.RequireAuthenticated()
	adminOnly := middleware.RequireAdmin()
	userOnly := middleware.RequireUser()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Own profile ---
	userHandler := handler.NewUserHandler(d.Users)
	me := e.Group("/users/me", authOnly)
	me.GET("", userHandler.Me)
	me.PUT("", userHandler.UpdateMe)
	me.DELETE("", userHandler.DeleteMe)

	// --- Administration ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	admin := e.Group("/admin", adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/role/admin", adminHandler.GrantAdmin)
	admin.POST("/users/:id/role/user", adminHandler.GrantUser)

	// --- Tasks ---
	taskHandler := handler.NewTaskHandler(d.Tasks)
	commentHandler := handler.NewCommentHandler(d.Comments)
	tasks := e.Group("/tasks")
	tasks.POST("", taskHandler.Create, adminOnly)
	tasks.GET("", taskHandler.List, adminOnly)
	tasks.GET("/assigned", taskHandler.ListAssigned, userOnly)
	tasks.GET("/author/:id", taskHandler.ListByAuthor, adminOnly)
	tasks.GET("/performer/:id", taskHandler.ListByPerformer, adminOnly)
	tasks.GET("/:id", taskHandler.Get, adminOnly)
	tasks.PATCH("/:id", taskHandler.Update, adminOnly)
	tasks.DELETE("/:id", taskHandler.Delete, adminOnly)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus, userOnly)
	tasks.GET("/:id/comments", commentHandler.ListByTask, authOnly)

	// --- Comments ---
	comments := e.Group("/comments")
	comments.POST("", commentHandler.Create, userOnly)
	comments.PUT("/:id", commentHandler.Update, userOnly)
	comments.DELETE("/:id", commentHandler.Delete, adminOnly)

	// --- Health probes (no auth required) ---
	// /health answers while the process runs; /health/ready also checks the stores.
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", promHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "taskmgmt"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func promHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger emits one structured entry per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
