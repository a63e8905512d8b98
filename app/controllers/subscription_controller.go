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

// HandleListSubscriptions returns the caller's subscriptions, or any
// client's when an admin passes ?user_id.
func HandleListSubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	ownerID := userCtx.UserID
	if userCtx.IsAdmin {
		if queried := uint(c.QueryInt("user_id", 0)); queried != 0 {
			ownerID = queried
		}
	}

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByUserID(ownerID)
	if err != nil {
		log.Printf("subscription list failed: %v", err)
		return internalError(c, "Could not list subscriptions")
	}
	return c.JSON(fiber.Map{"subscriptions": subs, "count": len(subs)})
}

type createSubscriptionRequest struct {
	UserID          uint       `json:"user_id"`
	PlanID          uint       `json:"plan_id"`
	CreditsExpireAt *time.Time `json:"credits_expire_at"`
	NextBillingAt   *time.Time `json:"next_billing_at"`
}

// HandleCreateSubscription assigns a plan to a client. Plan name and price
// are copied onto the subscription so later plan edits stay non-retroactive.
func HandleCreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if req.UserID == 0 || req.PlanID == 0 {
		return badRequest(c, "Missing required fields: user_id, plan_id")
	}

	factory := repository.GetGlobalFactory()
	plan, err := factory.GetPlanRepository().GetByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badRequest(c, "Unknown plan")
		}
		return internalError(c, "Could not load plan")
	}
	if _, err := factory.GetUserRepository().GetByID(req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badRequest(c, "Unknown client")
		}
		return internalError(c, "Could not load client")
	}

	sub := &models.Subscription{
		UserID:          req.UserID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		PriceCents:      plan.PriceCents,
		Status:          models.SubscriptionStatusActive,
		CreditsExpireAt: req.CreditsExpireAt,
		NextBillingAt:   req.NextBillingAt,
	}
	if err := factory.GetSubscriptionRepository().Create(sub); err != nil {
		log.Printf("subscription create failed: %v", err)
		return internalError(c, "Could not create subscription")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "subscription": sub})
}

type subscriptionStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateSubscriptionStatus flips a subscription's status.
func HandleUpdateSubscriptionStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid subscription id")
	}

	var req subscriptionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	switch req.Status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusSuspended, models.SubscriptionStatusCanceled:
	default:
		return badRequest(c, "Invalid status: "+req.Status)
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	if err := repo.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Subscription not found")
		}
		log.Printf("subscription status update failed: %v", err)
		return internalError(c, "Could not update subscription")
	}
	return c.JSON(fiber.Map{"success": true, "status": req.Status})
}

// HandleInternalSuspend is the token-guarded endpoint the housekeeping job
// calls to suspend a subscription whose credits expired.
func HandleInternalSuspend(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid subscription id")
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	if err := repo.UpdateStatus(id, models.SubscriptionStatusSuspended); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Subscription not found")
		}
		log.Printf("internal suspend failed for subscription %d: %v", id, err)
		return internalError(c, "Could not suspend subscription")
	}
	return c.JSON(fiber.Map{"success": true, "status": models.SubscriptionStatusSuspended})
}
