package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes returned alongside HTTP status + message, so
// clients can branch on class without parsing message text.
const (
	CodeValidationError = "validation_error"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeRateLimited     = "rate_limited"
	CodeBadGateway      = "bad_gateway"
	CodeServerError     = "server_error"
)

// ErrorHandler is the app-wide Fiber error handler. Expected errors
// keep their message; anything unexpected is logged and reduced to a
// generic server error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		message = "server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    errorCode(status),
	})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed:
		return CodeValidationError
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusConflict:
		return CodeConflict
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	case fiber.StatusBadGateway:
		return CodeBadGateway
	default:
		return CodeServerError
	}
}
