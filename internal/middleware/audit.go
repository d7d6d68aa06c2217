package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/unihub/walletsession/internal/logging"
)

// Audit logs one line per request. Phone numbers and tokens travel in bodies
// and are never logged here; only the route path is.
func Audit(logger *slog.Logger) fiber.Handler {
	logger = logging.Component(logger, "http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("route", routeOf(c)),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFrom(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			logger.Error("request completed", attrs...)
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			logger.Warn("request completed", attrs...)
			return nil
		}
		logger.Info("request completed", attrs...)
		return nil
	}
}

// routeOf prefers the registered pattern so GET /wallet-session/:phoneNumber
// does not leak the number into logs.
func routeOf(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
