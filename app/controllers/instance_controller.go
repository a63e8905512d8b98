package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/cache"
	"github.com/ZapResell/ZapAdmin/internal/pkg/evolution"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
)

// Evolution QR payloads rotate server-side, so cached copies are only good
// for a short window.
const qrCodeCacheTTL = 30 * time.Second

func qrCacheKey(instanceName string) string {
	return "instance:qr:" + instanceName
}

// HandleListInstances returns the caller's instances, or every instance for
// admins.
func HandleListInstances(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	filter := repository.OwnerFilter{UserID: userCtx.UserID, IsAdmin: userCtx.IsAdmin}

	instances, err := repository.GetGlobalFactory().GetInstanceRepository().List(filter)
	if err != nil {
		log.Printf("instance list failed: %v", err)
		return internalError(c, "Could not list instances")
	}
	return c.JSON(fiber.Map{"instances": instances, "count": len(instances)})
}

type createInstanceRequest struct {
	Name   string `json:"name"`
	UserID uint   `json:"user_id"`
}

// HandleCreateInstance registers an instance record. The live connection is
// established later through the Evolution webhook flow.
func HandleCreateInstance(c *fiber.Ctx) error {
	var req createInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest(c, "Missing required fields: name")
	}

	userCtx := usercontext.GetUserContext(c)
	ownerID := userCtx.UserID
	if req.UserID != 0 && req.UserID != userCtx.UserID {
		if !userCtx.IsAdmin {
			return forbidden(c, "Cannot create instances for another client")
		}
		ownerID = req.UserID
	}

	instance := &models.Instance{
		UUID:             uuid.New().String(),
		Name:             req.Name,
		UserID:           ownerID,
		ConnectionStatus: models.ConnectionStatusDisconnected,
	}
	if err := repository.GetGlobalFactory().GetInstanceRepository().Create(instance); err != nil {
		log.Printf("instance create failed: %v", err)
		return internalError(c, "Could not create instance")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "instance": instance})
}

// loadOwnedInstance fetches an instance and enforces ownership.
func loadOwnedInstance(c *fiber.Ctx) (*models.Instance, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, badRequest(c, "Invalid instance id")
	}
	instance, err := repository.GetGlobalFactory().GetInstanceRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Instance not found")
		}
		return nil, internalError(c, "Could not load instance")
	}
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsAdmin && instance.UserID != userCtx.UserID {
		return nil, forbidden(c, "Instance belongs to another client")
	}
	return instance, nil
}

// HandleGetInstance returns a single instance.
func HandleGetInstance(c *fiber.Ctx) error {
	instance, errResp := loadOwnedInstance(c)
	if instance == nil {
		return errResp
	}
	return c.JSON(fiber.Map{"instance": instance})
}

// HandleDeleteInstance removes an instance record and, best effort, logs the
// session out on the Evolution server.
func HandleDeleteInstance(c *fiber.Ctx) error {
	instance, errResp := loadOwnedInstance(c)
	if instance == nil {
		return errResp
	}

	if client := evolutionClientFromConfig(); client != nil {
		if err := client.Logout(c.Context(), instance.Name); err != nil {
			log.Printf("evolution logout for %s failed: %v", instance.Name, err)
		}
	}

	if err := repository.GetGlobalFactory().GetInstanceRepository().Delete(instance.ID); err != nil {
		log.Printf("instance delete failed: %v", err)
		return internalError(c, "Could not delete instance")
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleInstanceQRCode fetches a fresh pairing QR code from the Evolution
// server and caches it on the instance row.
func HandleInstanceQRCode(c *fiber.Ctx) error {
	instance, errResp := loadOwnedInstance(c)
	if instance == nil {
		return errResp
	}

	// Cache lookups are best effort: an unreachable Redis is treated as a
	// miss and the code is fetched upstream.
	if cached, err := cache.Get(qrCacheKey(instance.Name)); err == nil && cached != "" {
		return c.JSON(fiber.Map{"instance": instance.Name, "qr_code": cached, "cached": true})
	}

	client := evolutionClientFromConfig()
	if client == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "not_configured", "Evolution API is not configured")
	}
	code, err := client.FetchQRCode(c.Context(), instance.Name)
	if err != nil {
		log.Printf("qr code fetch for %s failed: %v", instance.Name, err)
		return jsonError(c, fiber.StatusBadGateway, "upstream_error", "Evolution API did not return a QR code")
	}
	if err := repository.GetGlobalFactory().GetInstanceRepository().SaveQRCode(instance.Name, code); err != nil {
		log.Printf("qr code store for %s failed: %v", instance.Name, err)
	}
	if err := cache.Set(qrCacheKey(instance.Name), code, qrCodeCacheTTL); err != nil {
		log.Printf("qr code cache write for %s failed: %v", instance.Name, err)
	}
	return c.JSON(fiber.Map{"instance": instance.Name, "qr_code": code, "cached": false})
}

// HandleRefreshInstanceStatus polls the Evolution server for the live
// connection state and persists the result.
func HandleRefreshInstanceStatus(c *fiber.Ctx) error {
	instance, errResp := loadOwnedInstance(c)
	if instance == nil {
		return errResp
	}

	client := evolutionClientFromConfig()
	if client == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "not_configured", "Evolution API is not configured")
	}
	state, err := client.ConnectionState(c.Context(), instance.Name)
	if err != nil {
		log.Printf("connection state poll for %s failed: %v", instance.Name, err)
		return jsonError(c, fiber.StatusBadGateway, "upstream_error", "Evolution API did not return a state")
	}

	status := models.NormalizeConnectionState(state)
	var lastConnectedAt *time.Time
	if status == models.ConnectionStatusConnected {
		now := time.Now()
		lastConnectedAt = &now
	}
	if err := repository.GetGlobalFactory().GetInstanceRepository().UpdateStatusByName(instance.Name, status, lastConnectedAt); err != nil {
		log.Printf("instance status write for %s failed: %v", instance.Name, err)
		return internalError(c, "Could not update instance status")
	}
	return c.JSON(fiber.Map{"instance": instance.Name, "status": status})
}

// evolutionClientFromConfig builds an Evolution client from the stored
// integration config, or nil when the integration is absent or incomplete.
func evolutionClientFromConfig() *evolution.Client {
	cfg, err := repository.GetGlobalFactory().GetConfigRepository().GetEvolution()
	if err != nil || cfg == nil {
		return nil
	}
	client, err := evolution.NewClient(cfg)
	if err != nil {
		return nil
	}
	return client
}
