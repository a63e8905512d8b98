package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
)

// HandleListPlans returns plans. Non-admins only see active plans.
func HandleListPlans(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPlanRepository()
	userCtx := usercontext.GetUserContext(c)

	var (
		plans []models.Plan
		err   error
	)
	if userCtx.IsAdmin {
		plans, err = repo.GetAll()
	} else {
		plans, err = repo.GetActive()
	}
	if err != nil {
		log.Printf("plan list failed: %v", err)
		return internalError(c, "Could not list plans")
	}
	return c.JSON(fiber.Map{"plans": plans, "count": len(plans)})
}

// HandleGetPlan returns a single plan by id.
func HandleGetPlan(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}
	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Could not load plan")
	}
	return c.JSON(fiber.Map{"plan": plan})
}

// HandleCreatePlan creates a resale plan.
func HandleCreatePlan(c *fiber.Ctx) error {
	plan := new(models.Plan)
	if err := c.BodyParser(plan); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	plan.ID = 0
	if plan.Currency == "" {
		plan.Currency = "BRL"
	}
	if plan.BillingInterval == "" {
		plan.BillingInterval = models.BillingIntervalMonthly
	}
	if err := plan.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := repository.GetGlobalFactory().GetPlanRepository().Create(plan); err != nil {
		log.Printf("plan create failed: %v", err)
		return internalError(c, "Could not create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "plan": plan})
}

type updatePlanRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	PriceCents      *int64  `json:"price_cents"`
	Credits         *int    `json:"credits"`
	BillingInterval *string `json:"billing_interval"`
	IsActive        *bool   `json:"is_active"`
}

// HandleUpdatePlan updates mutable plan fields.
func HandleUpdatePlan(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	var req updatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Could not load plan")
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.Credits != nil {
		plan.Credits = *req.Credits
	}
	if req.BillingInterval != nil {
		plan.BillingInterval = *req.BillingInterval
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := plan.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := repo.Update(plan); err != nil {
		log.Printf("plan update failed: %v", err)
		return internalError(c, "Could not update plan")
	}
	return c.JSON(fiber.Map{"success": true, "plan": plan})
}

// HandleDeletePlan soft deletes a plan.
func HandleDeletePlan(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}
	if err := repository.GetGlobalFactory().GetPlanRepository().Delete(id); err != nil {
		log.Printf("plan delete failed: %v", err)
		return internalError(c, "Could not delete plan")
	}
	return c.JSON(fiber.Map{"success": true})
}
