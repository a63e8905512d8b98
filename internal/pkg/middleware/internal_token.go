package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
)

// InternalTokenMiddleware guards the internal endpoints called by the
// housekeeping job with the elevated service token. The token never reaches
// dashboard callers.
func InternalTokenMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := env.GetEnv("INTERNAL_API_TOKEN", "")
		got := strings.TrimSpace(c.Get("X-Internal-Token"))
		if got == "" {
			got = extractBearerToken(c)
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid internal token"})
		}
		return c.Next()
	}
}
