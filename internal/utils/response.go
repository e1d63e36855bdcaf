package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends the standard success envelope
func SuccessResponse(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// ErrorResponse sends the standard failure envelope
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// NotFoundResponse sends a 404 failure envelope
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, fiber.StatusNotFound, message)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
