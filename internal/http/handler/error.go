package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gardencms/internal/http/middleware"
	"gardencms/internal/logger"
	"gardencms/internal/service"
)

// Error codes carried in the envelope's code field.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeBotDetected      = "BOT_DETECTED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

const internalMessage = "internal server error"

var kinds = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrNotFound, fiber.StatusNotFound, CodeNotFound},
	{service.ErrInvalidInput, fiber.StatusBadRequest, CodeInvalidInput},
	{service.ErrConflict, fiber.StatusConflict, CodeConflict},
	{service.ErrRateLimited, fiber.StatusTooManyRequests, CodeRateLimited},
	{service.ErrBotDetected, fiber.StatusBadRequest, CodeBotDetected},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, CodeUnauthorized},
	{service.ErrForbidden, fiber.StatusForbidden, CodeForbidden},
}

// codeForStatus names the failure kind of an HTTP status raised by Fiber or
// middleware.
func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case fiber.StatusServiceUnavailable:
		return CodeUnavailable
	}
	if status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
		return CodeInvalidInput
	}
	return CodeInternal
}

// ErrorHandler returns a Fiber global error handler that renders service
// sentinels and *fiber.Error values as envelopes. Anything else is logged
// and reported as a generic internal error.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		for _, k := range kinds {
			if errors.Is(err, k.err) {
				return writeError(c, k.status, k.code, err.Error())
			}
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code >= fiber.StatusInternalServerError {
				log.Error("request failed", requestFields(c, err)...)
				return writeError(c, fe.Code, codeForStatus(fe.Code), internalMessage)
			}
			return writeError(c, fe.Code, codeForStatus(fe.Code), fe.Message)
		}

		log.Error("unhandled error", requestFields(c, err)...)
		return writeError(c, fiber.StatusInternalServerError, CodeInternal, internalMessage)
	}
}

func requestFields(c *fiber.Ctx, err error) []logger.Field {
	rid, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return []logger.Field{
		logger.String("request_id", rid),
		logger.String("method", c.Method()),
		logger.String("path", c.Path()),
		logger.Error(err),
	}
}
