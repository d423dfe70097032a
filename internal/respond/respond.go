// Package respond writes the JSON error envelope shared by every handler.
package respond

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/gofiber/fiber/v2"
)

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func InvalidBody(c *fiber.Ctx) error {
	return Error(c, fiber.StatusBadRequest, "Invalid request body")
}

// Status pairs a sentinel error with the HTTP status it maps to.
type Status struct {
	Err  error
	Code int
}

var uploadStatus = []Status{
	{Err: storage.ErrStorageDisabled, Code: fiber.StatusServiceUnavailable},
	{Err: storage.ErrUnsupportedType, Code: fiber.StatusUnsupportedMediaType},
	{Err: storage.ErrTooLarge, Code: fiber.StatusRequestEntityTooLarge},
}

// Map writes the response for err. Validation errors become 400 with field
// details, sentinels listed in mapping use their status and message, and
// anything else is logged and reported as a 500 with fallback as message.
func Map(c *fiber.Ctx, err error, fallback string, mapping ...Status) error {
	if ve, ok := validate.As(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Validation failed", Fields: ve,
		})
	}
	if errors.Is(err, authctx.ErrCustomerNotFound) {
		return Error(c, fiber.StatusNotFound, err.Error())
	}
	for _, m := range uploadStatus {
		if errors.Is(err, m.Err) {
			return Error(c, m.Code, m.Err.Error())
		}
	}
	for _, m := range mapping {
		if errors.Is(err, m.Err) {
			return Error(c, m.Code, m.Err.Error())
		}
	}

	attrs := []any{"method", c.Method(), "path", c.Path(), "error", err}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if uid, uerr := authctx.GetUserID(c); uerr == nil {
		attrs = append(attrs, "user_id", uid.String())
	}
	slog.Error(fallback, attrs...)
	return Error(c, fiber.StatusInternalServerError, fallback)
}
