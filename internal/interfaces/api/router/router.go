package router

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"remindbot/internal/interfaces/api/handler"
	"remindbot/internal/pkg/logger"
)

// Config holds the dependencies for the router.
type Config struct {
	LineHandler     *handler.LineHandler
	ReminderHandler *handler.ReminderHandler
	Logger          logger.Logger
	// APIToken guards /api with "Authorization: Bearer <token>". The API is
	// not mounted when it is empty.
	APIToken string
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	// Use custom logger that integrates with our logger interface
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Line-Signature"},
		MaxAge:       300,
	}))

	// Routes
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "remindbot is running")
	})
	e.GET("/healthz", cfg.ReminderHandler.Health)

	// LINE Webhook Endpoint
	// Note: LINE Platform requires POST for webhook
	e.POST("/callback", cfg.LineHandler.HandleWebhook)

	if cfg.APIToken == "" {
		cfg.Logger.Warn("API_TOKEN not set, /api routes are disabled")
	} else {
		token := []byte(cfg.APIToken)
		api := e.Group("/api", middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup:  "header:" + echo.HeaderAuthorization,
			AuthScheme: "Bearer",
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), token) == 1, nil
			},
		}))
		api.GET("/scopes/:scope/reminders", cfg.ReminderHandler.ListReminders)
		api.GET("/scopes/:scope/reminders/:index", cfg.ReminderHandler.GetReminder)
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
