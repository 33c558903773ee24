package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck godoc
// @Summary  Readiness, including database connectivity
// @Tags     health
// @Produce  json
// @Success  200  {object}  Response
// @Failure  503  {object}  Response
// @Router   /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, CodeUnavailable, "database unavailable")
		}
		return respond(c, fiber.StatusOK, "healthy", fiber.Map{"status": "healthy", "database": "up"})
	}
}

// LivenessProbe answers 200 while the process is running.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, "alive", nil)
	}
}
