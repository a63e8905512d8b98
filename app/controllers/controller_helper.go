package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusBadRequest, "bad_request", message)
}

func forbidden(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusForbidden, "forbidden", message)
}

func methodNotAllowed(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusMethodNotAllowed, "method_not_allowed", "Method "+c.Method()+" is not allowed")
}

func internalError(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", message)
}

// paramID parses the numeric :id route parameter.
func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// splitTags parses a comma-separated query value into a tag set.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
