package apperrors

import (
	"parcel-delivery/logger"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
)

// Handle renders a service error as the standard JSON envelope. Raw internals
// never reach the client; unexpected errors are logged and reported as 500s.
func Handle(c *fiber.Ctx, err error) error {
	appErr, ok := As(err)
	if !ok {
		appErr = Internal("Something went wrong", err)
	}

	if appErr.Kind == KindInternal {
		logger.Error("Internal error on "+c.Method()+" "+c.Path(), appErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Something went wrong",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(appErr.StatusCode()).JSON(types.ApiResponse{
		Success: false,
		Message: appErr.Message,
		Status:  appErr.StatusCode(),
	})
}

// ErrorHandler is the fiber app-level fallback for errors escaping handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if _, ok := As(err); ok {
		return Handle(c, err)
	}

	code := fiber.StatusInternalServerError
	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
		return c.Status(code).JSON(types.ApiResponse{
			Success: false,
			Message: fiberErr.Message,
			Status:  code,
		})
	}

	logger.Error("Unhandled error on "+c.Method()+" "+c.Path(), err)
	return c.Status(code).JSON(types.ApiResponse{
		Success: false,
		Message: "Something went wrong",
		Status:  code,
	})
}
