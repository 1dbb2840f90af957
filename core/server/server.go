package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Config holds configuration for the status HTTP server.
type Config struct {
	// Enabled turns the status server on. The daemon runs fine without it;
	// logs remain the primary observable output.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey, when set, is required in the X-API-Key header for /status.
	ApiKey string `mapstructure:"api_key" default:""`
}

// New builds the fiber app serving the read-only operational surface.
// Routes beyond /healthz are registered by the caller; KeyGuard protects
// them when an API key is configured. The surface exposes state only and
// never mutates anything.
func New(cfg Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
	})

	app.Use(func(c *fiber.Ctx) error {
		log.Debug("Request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		return c.Next()
	})

	// Liveness probe, always unauthenticated.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

// KeyGuard returns a middleware enforcing the configured API key.
// With no key configured it lets everything through.
func KeyGuard(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey != "" && c.Get("X-API-Key") != cfg.ApiKey {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}
