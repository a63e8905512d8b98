package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
	"github.com/ZapResell/ZapAdmin/internal/pkg/security"
)

const tokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a dashboard user and issues a bearer token.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Missing required fields: email, password")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
		}
		log.Printf("login lookup failed: %v", err)
		return internalError(c, "Login failed")
	}

	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}
	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "User inactive")
	}

	token, err := security.GenerateToken(user.ID, user.Role, env.GetEnv("JWT_SECRET", ""), tokenTTL)
	if err != nil {
		log.Printf("token generation failed for user %d: %v", user.ID, err)
		return internalError(c, "Login failed")
	}

	// Refresh last-login timestamp best-effort.
	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}
