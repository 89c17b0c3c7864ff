// Package httpx holds the response envelope and request parsing helpers
// shared by all HTTP handlers.
package httpx

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Success writes the standard success envelope.
func Success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    "success",
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NoContent writes an empty 204 response.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
