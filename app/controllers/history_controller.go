package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
)

// historyFilterFromRequest builds the shared history filter: owner-scoped
// unless admin, optional ?events=a,b tag set.
func historyFilterFromRequest(c *fiber.Ctx) repository.HistoryFilter {
	userCtx := usercontext.GetUserContext(c)
	return repository.HistoryFilter{
		UserID:     userCtx.UserID,
		IsAdmin:    userCtx.IsAdmin,
		EventTypes: splitTags(c.Query("events")),
	}
}

// HandleListWebhookEvents returns the newest Evolution webhook audit rows.
func HandleListWebhookEvents(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetHistoryRepository()
	events, err := repo.ListWebhookEvents(historyFilterFromRequest(c))
	if err != nil {
		log.Printf("webhook history query failed: %v", err)
		return internalError(c, "Could not load webhook history")
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// HandleListAutomationLogs returns the newest n8n automation rows.
func HandleListAutomationLogs(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetHistoryRepository()
	logs, err := repo.ListAutomationLogs(historyFilterFromRequest(c))
	if err != nil {
		log.Printf("automation history query failed: %v", err)
		return internalError(c, "Could not load automation history")
	}
	return c.JSON(fiber.Map{"logs": logs, "count": len(logs)})
}
