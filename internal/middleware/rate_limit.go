package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/unihub/walletsession/internal/logging"
)

// PhoneRateLimit caps requests per phone number, falling back to the client
// IP when the body carries none. It is a no-op without Redis and fails open on
// cache errors.
func PhoneRateLimit(cache *redis.Client, scope string, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 20
	}
	logger = logging.Component(logger, "ratelimit")
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			PhoneNumber string `json:"phoneNumber"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.PhoneNumber)
		if subject == "" {
			subject = c.IP()
		}

		ctx := c.UserContext()
		key := "walletsession:rl:" + scope + ":" + subject
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit counter unavailable", slog.String("scope", scope), slog.Any("error", err))
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(ctx, key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return reject(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}
