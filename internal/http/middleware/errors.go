package middleware

import "github.com/gofiber/fiber/v2"

// handleError lets the app's error handler write the response right away, so
// middleware observing the status sees the final value.
func handleError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
