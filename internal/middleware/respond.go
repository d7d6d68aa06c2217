package middleware

import "github.com/gofiber/fiber/v2"

// reject writes the failure envelope wallet clients expect.
func reject(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}
