// Package httpx holds Fiber helpers shared by the route packages.
package httpx

import (
	"errors"
	"strconv"

	"backend-travelcompanion/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Error converts a service error into a *fiber.Error carrying its status.
// Server errors pass through unchanged so ErrorHandler can log their detail.
func Error(err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		return err
	}
	return fiber.NewError(status, err.Error())
}

// ParamID parses a positive int64 path parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// ParseBody decodes the request body, reporting malformed input as 400.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	return nil
}

// ErrorHandler renders every error as {"message": ...}. Server errors get
// the generic status text; their detail only reaches onServerError.
func ErrorHandler(onServerError func(c *fiber.Ctx, err error)) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.Status(err)
		msg := err.Error()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			msg = fe.Message
		}
		if status >= fiber.StatusInternalServerError {
			msg = utils.StatusMessage(status)
			if onServerError != nil {
				onServerError(c, err)
			}
		}
		return c.Status(status).JSON(fiber.Map{"message": msg})
	}
}
