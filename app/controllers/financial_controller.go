package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
)

// HandleListFinancialEntries returns the caller's entries, or every entry
// for admins.
func HandleListFinancialEntries(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	filter := repository.OwnerFilter{UserID: userCtx.UserID, IsAdmin: userCtx.IsAdmin}

	entries, err := repository.GetGlobalFactory().GetFinancialEntryRepository().List(filter)
	if err != nil {
		log.Printf("financial entry list failed: %v", err)
		return internalError(c, "Could not list financial entries")
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

type financialEntryRequest struct {
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	DueAt       *time.Time `json:"due_at"`
	Paid        *bool      `json:"paid"`
	GatewayRef  string     `json:"gateway_ref"`
	UserID      uint       `json:"user_id"`
}

// HandleCreateFinancialEntry records a receivable or payable. Only admins
// may create entries on behalf of another client.
func HandleCreateFinancialEntry(c *fiber.Ctx) error {
	var req financialEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	userCtx := usercontext.GetUserContext(c)
	ownerID := userCtx.UserID
	if req.UserID != 0 && req.UserID != userCtx.UserID {
		if !userCtx.IsAdmin {
			return forbidden(c, "Cannot create entries for another client")
		}
		ownerID = req.UserID
	}

	entry := &models.FinancialEntry{
		UserID:      ownerID,
		Kind:        req.Kind,
		Description: req.Description,
		AmountCents: req.AmountCents,
		DueAt:       req.DueAt,
		GatewayRef:  req.GatewayRef,
	}
	if req.Paid != nil {
		entry.Paid = *req.Paid
	}
	if err := entry.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := repository.GetGlobalFactory().GetFinancialEntryRepository().Create(entry); err != nil {
		log.Printf("financial entry create failed: %v", err)
		return internalError(c, "Could not create financial entry")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "entry": entry})
}

// loadOwnedEntry fetches an entry and enforces that the caller owns it or
// is an admin.
func loadOwnedEntry(c *fiber.Ctx) (*models.FinancialEntry, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, badRequest(c, "Invalid entry id")
	}
	entry, err := repository.GetGlobalFactory().GetFinancialEntryRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Entry not found")
		}
		return nil, internalError(c, "Could not load financial entry")
	}
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsAdmin && entry.UserID != userCtx.UserID {
		return nil, forbidden(c, "Entry belongs to another client")
	}
	return entry, nil
}

// HandleUpdateFinancialEntry updates an entry the caller owns.
func HandleUpdateFinancialEntry(c *fiber.Ctx) error {
	entry, errResp := loadOwnedEntry(c)
	if entry == nil {
		return errResp
	}

	var req financialEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if req.Kind != "" {
		entry.Kind = req.Kind
	}
	if req.Description != "" {
		entry.Description = req.Description
	}
	if req.AmountCents != 0 {
		entry.AmountCents = req.AmountCents
	}
	if req.DueAt != nil {
		entry.DueAt = req.DueAt
	}
	if req.Paid != nil {
		entry.Paid = *req.Paid
	}
	if req.GatewayRef != "" {
		entry.GatewayRef = req.GatewayRef
	}

	if err := entry.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := repository.GetGlobalFactory().GetFinancialEntryRepository().Update(entry); err != nil {
		log.Printf("financial entry update failed: %v", err)
		return internalError(c, "Could not update financial entry")
	}
	return c.JSON(fiber.Map{"success": true, "entry": entry})
}

// HandleDeleteFinancialEntry deletes an entry the caller owns.
func HandleDeleteFinancialEntry(c *fiber.Ctx) error {
	entry, errResp := loadOwnedEntry(c)
	if entry == nil {
		return errResp
	}
	if err := repository.GetGlobalFactory().GetFinancialEntryRepository().Delete(entry.ID); err != nil {
		log.Printf("financial entry delete failed: %v", err)
		return internalError(c, "Could not delete financial entry")
	}
	return c.JSON(fiber.Map{"success": true})
}
