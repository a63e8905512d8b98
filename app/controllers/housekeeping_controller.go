package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ZapResell/ZapAdmin/internal/pkg/housekeeping"
)

// HandleRunHousekeeping triggers a credit-expiry sweep outside the regular
// schedule and reports the per-row outcome.
func HandleRunHousekeeping(c *fiber.Ctx) error {
	service := housekeeping.GetManager().GetService()
	if service == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "not_configured", "Housekeeping is not initialized")
	}

	summary, err := service.Run(c.Context())
	if err != nil {
		log.Printf("manual housekeeping run failed: %v", err)
		return internalError(c, "Housekeeping run failed")
	}
	return c.JSON(fiber.Map{"success": true, "summary": summary})
}
