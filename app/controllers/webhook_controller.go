package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/automation"
	"github.com/ZapResell/ZapAdmin/internal/pkg/cache"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
	"github.com/ZapResell/ZapAdmin/internal/pkg/webhook"
)

// HandleEvolutionWebhook ingests connection events from the Evolution API
// server. The audit insert is best-effort; the status write is the primary
// effect and decides the response.
func HandleEvolutionWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	event, err := webhook.ParseEvolutionEvent(rawBody)
	if err != nil {
		if errors.Is(err, webhook.ErrMissingInstanceName) {
			return badRequest(c, "Webhook payload missing instance name")
		}
		return badRequest(c, "Invalid webhook payload")
	}

	repos := repository.GetGlobalRepositories()

	// Resolve the owner for the audit row. An unknown instance still gets
	// audited, just without linkage.
	var ownerID uint
	var instanceID *uint
	instance, lookupErr := repos.Instance.GetByName(event.InstanceName)
	if lookupErr == nil {
		ownerID = instance.UserID
		instanceID = &instance.ID
	}

	eventType := event.Event
	if eventType == "" {
		eventType = "connection.update"
	}
	audited := true
	if err := repos.History.CreateWebhookEvent(&models.WebhookEvent{
		UserID:       ownerID,
		InstanceID:   instanceID,
		InstanceName: event.InstanceName,
		EventType:    eventType,
		PayloadJSON:  string(rawBody),
		StatusCode:   fiber.StatusOK,
	}); err != nil {
		audited = false
		log.Printf("webhook audit insert failed for %s: %v", event.InstanceName, err)
	}

	if event.QRCode != "" {
		if err := repos.Instance.SaveQRCode(event.InstanceName, event.QRCode); err != nil {
			log.Printf("qr code update failed for %s: %v", event.InstanceName, err)
		}
		if err := cache.Set(qrCacheKey(event.InstanceName), event.QRCode, qrCodeCacheTTL); err != nil {
			log.Printf("qr code cache write failed for %s: %v", event.InstanceName, err)
		}
	}

	status := models.NormalizeConnectionState(event.State)
	var lastConnectedAt *time.Time
	if status == models.ConnectionStatusConnected {
		now := time.Now()
		lastConnectedAt = &now
		// A paired instance has no live QR code anymore.
		if err := cache.Delete(qrCacheKey(event.InstanceName)); err != nil {
			log.Printf("qr code cache drop failed for %s: %v", event.InstanceName, err)
		}
	}

	if err := repos.Instance.UpdateStatusByName(event.InstanceName, status, lastConnectedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Event for an instance we do not track. Audited above, nothing
			// else to do.
			return c.JSON(fiber.Map{"success": true, "ignored": true})
		}
		log.Printf("status update failed for %s: %v", event.InstanceName, err)
		return internalError(c, "Could not update instance status")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"instance": event.InstanceName,
		"status":   status,
		"audited":  audited,
	})
}

// HandleN8NWebhook records automation callbacks from n8n.
func HandleN8NWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	var body struct {
		Event  string `json:"event"`
		UserID uint   `json:"user_id"`
	}
	_ = c.BodyParser(&body)
	if body.Event == "" {
		body.Event = "automation.callback"
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.History.CreateAutomationLog(&models.AutomationLog{
		UserID:      body.UserID,
		EventType:   body.Event,
		PayloadJSON: string(rawBody),
		StatusCode:  fiber.StatusOK,
	}); err != nil {
		log.Printf("automation log insert failed: %v", err)
		return internalError(c, "Could not record automation event")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleAutomationRelay forwards a payload to the configured n8n webhook and
// records both sides of the exchange in the automation history.
func HandleAutomationRelay(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	rawBody := append([]byte(nil), c.BodyRaw()...)
	if len(rawBody) == 0 {
		return badRequest(c, "Missing request body")
	}

	repos := repository.GetGlobalRepositories()
	cfg, err := repos.Config.GetN8N()
	if err != nil {
		return internalError(c, "Could not load n8n configuration")
	}
	if cfg == nil || !cfg.Enabled {
		return badRequest(c, "n8n integration is not configured")
	}

	client, err := automation.NewClient(cfg)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	response, statusCode, relayErr := client.Relay(ctx, rawBody)

	// The history row records the outcome either way.
	if err := repos.History.CreateAutomationLog(&models.AutomationLog{
		UserID:       userCtx.UserID,
		EventType:    "automation.relay",
		PayloadJSON:  string(rawBody),
		ResponseJSON: string(response),
		StatusCode:   statusCode,
	}); err != nil {
		log.Printf("automation log insert failed: %v", err)
	}

	if relayErr != nil {
		return jsonError(c, fiber.StatusInternalServerError, "upstream_error", "n8n relay failed")
	}
	return c.JSON(fiber.Map{"success": true, "status_code": statusCode})
}
