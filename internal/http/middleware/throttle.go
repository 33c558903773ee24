package middleware

import (
	"github.com/gofiber/fiber/v2"

	"gardencms/internal/logger"
	"gardencms/internal/ratelimit"
)

var throttleExempt = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/metrics": true,
}

// Throttle limits requests per client IP. A limiter failure lets the request
// through and is logged.
func Throttle(l ratelimit.Limiter, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if throttleExempt[c.Path()] {
			return c.Next()
		}

		allowed, err := l.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.Warn("throttle unavailable", logger.String("ip", c.IP()), logger.Error(err))
			return c.Next()
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, slow down")
		}
		return c.Next()
	}
}
