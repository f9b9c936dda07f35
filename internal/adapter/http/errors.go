package http

import (
	"errors"
	"log/slog"

	"dyd/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps domain errors to status codes. Anything unknown is
// logged and answered with a bare 500.
func NewErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		body := fiber.Map{"error": "internal server error"}

		var (
			verr *domain.ValidationError
			ferr *fiber.Error
		)
		switch {
		case errors.As(err, &verr):
			code = fiber.StatusBadRequest
			body["error"] = verr.Message
			if len(verr.Fields) > 0 {
				body["fields"] = verr.Fields
			}
		case errors.As(err, &ferr):
			code = ferr.Code
			body["error"] = ferr.Message
		case errors.Is(err, domain.ErrUnauthorized):
			code, body["error"] = fiber.StatusUnauthorized, err.Error()
		case errors.Is(err, domain.ErrPaymentRequired):
			code, body["error"] = fiber.StatusPaymentRequired, err.Error()
		case errors.Is(err, domain.ErrForbidden):
			code, body["error"] = fiber.StatusForbidden, err.Error()
		case errors.Is(err, domain.ErrNotFound):
			code, body["error"] = fiber.StatusNotFound, err.Error()
		case errors.Is(err, domain.ErrConflict):
			code, body["error"] = fiber.StatusConflict, err.Error()
		case errors.Is(err, domain.ErrWaitTimeout):
			code, body["error"] = fiber.StatusAccepted, err.Error()
		default:
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals("requestid"),
				"error", err)
		}
		return c.Status(code).JSON(body)
	}
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
