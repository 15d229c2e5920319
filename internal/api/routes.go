// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions       SessionService
	ActiveSessions func() int
	Version        string
	Logger         *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Session SessionHandler
	Data    DataHandler
	Chat    ChatHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "api"))

	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.ActiveSessions),
		Session: NewSessionHandler(deps.Sessions, log),
		Data:    NewDataHandler(deps.Sessions, log),
		Chat:    NewChatHandler(deps.Sessions, log),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	api := e.Group("/api")
	api.GET("/health", handlers.Health.HandleHealth)
	api.GET("/examples", handlers.Chat.HandleExamples)

	// Session routes
	sessions := api.Group("/sessions")
	sessions.POST("", handlers.Session.HandleCreateSession)
	sessions.GET("/:id", handlers.Session.HandleGetSession)
	sessions.DELETE("/:id", handlers.Session.HandleDeleteSession)

	// Data routes
	sessions.POST("/:id/upload", handlers.Data.HandleUpload)
	sessions.GET("/:id/table", handlers.Data.HandleGetTable)
	sessions.GET("/:id/table/msgpack", handlers.Data.HandleGetTableMsgpack)
	sessions.GET("/:id/summary", handlers.Data.HandleGetSummary)

	// Conversation routes
	sessions.POST("/:id/ask", handlers.Chat.HandleAsk)
	sessions.GET("/:id/history", handlers.Chat.HandleGetHistory)
	sessions.DELETE("/:id/history", handlers.Chat.HandleClearHistory)
}

// MiddlewareConfig holds the settings SetupMiddleware needs
type MiddlewareConfig struct {
	Logger           *zap.Logger
	RequestLogging   bool
	MaxUploadSize    string
	RequestTimeout   time.Duration
	EnableCORS       bool
	AllowOrigins     []string
	EnableGzip       bool
	CompressionLevel int
	Production       bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	SetDevelopmentMode(!cfg.Production)
	e.HTTPErrorHandler = ErrorHandler

	if cfg.RequestLogging && cfg.Logger != nil {
		e.Use(requestLogger(cfg.Logger))
	}
	e.Use(middleware.Recover())

	if cfg.RequestTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			// Asks are bounded by the model client's own timeout.
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Path(), "/ask") || strings.HasSuffix(c.Path(), "/upload")
			},
			Timeout: cfg.RequestTimeout,
		}))
	}

	if cfg.EnableGzip {
		level := cfg.CompressionLevel
		if level == 0 {
			level = 5
		}
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: level,
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Path(), "/msgpack")
			},
		}))
	}

	if cfg.MaxUploadSize != "" {
		e.Use(middleware.BodyLimit(cfg.MaxUploadSize))
	}

	if cfg.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

// requestLogger writes one zap line per request.
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	log = log.With(zap.String("component", "http"))
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
