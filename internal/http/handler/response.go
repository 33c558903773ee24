package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"gardencms/internal/http/middleware"
)

// Response is the envelope wrapping every reply.
type Response struct {
	Success    bool    `json:"success"`
	StatusCode int     `json:"statusCode"`
	Message    string  `json:"message"`
	Data       any     `json:"data"`
	Error      *string `json:"error"`
	Code       string  `json:"code,omitempty"`
	Path       string  `json:"path"`
	RequestID  string  `json:"requestId,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func envelope(c *fiber.Ctx, status int, message string) Response {
	return Response{
		StatusCode: status,
		Message:    message,
		Path:       c.OriginalURL(),
		RequestID:  requestIDFromCtx(c),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// respond writes a successful envelope carrying data.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	res := envelope(c, status, message)
	res.Success = true
	res.Data = data
	return c.Status(status).JSON(res)
}

// writeError writes a failure envelope. detail must be safe to show callers.
func writeError(c *fiber.Ctx, status int, code, detail string) error {
	res := envelope(c, status, utils.StatusMessage(status))
	res.Code = code
	res.Error = &detail
	return c.Status(status).JSON(res)
}
