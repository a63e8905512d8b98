package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
)

const clientPageSize = 25

// HandleListClients returns clients, paginated or filtered by search query.
func HandleListClients(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := strings.TrimSpace(c.Query("query")); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			log.Printf("client search failed: %v", err)
			return internalError(c, "Could not search clients")
		}
		return c.JSON(fiber.Map{"clients": users, "count": len(users)})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	users, err := repo.List((page-1)*clientPageSize, clientPageSize)
	if err != nil {
		log.Printf("client list failed: %v", err)
		return internalError(c, "Could not list clients")
	}
	total, err := repo.Count()
	if err != nil {
		log.Printf("client count failed: %v", err)
		return internalError(c, "Could not list clients")
	}
	return c.JSON(fiber.Map{"clients": users, "total": total, "page": page})
}

type createClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// HandleCreateClient registers a new client account.
func HandleCreateClient(c *fiber.Ctx) error {
	var req createClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return badRequest(c, "Missing required fields: "+strings.Join(missing, ", "))
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			return badRequest(c, "Invalid role: "+req.Role)
		}
		user.Role = req.Role
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if err := repo.Create(user); err != nil {
		log.Printf("client create failed: %v", err)
		return internalError(c, "Could not create client")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "client": user})
}

type updateClientRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
}

// HandleUpdateClient updates mutable client fields.
func HandleUpdateClient(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid client id")
	}

	var req updateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
		}
		return internalError(c, "Could not load client")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		switch *req.Status {
		case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
			user.Status = *req.Status
		default:
			return badRequest(c, "Invalid status: "+*req.Status)
		}
	}

	if err := user.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := repo.Update(user); err != nil {
		log.Printf("client update failed: %v", err)
		return internalError(c, "Could not update client")
	}
	return c.JSON(fiber.Map{"success": true, "client": user})
}

// HandleDeleteClient soft deletes a client.
func HandleDeleteClient(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid client id")
	}
	repo := repository.GetGlobalFactory().GetUserRepository()
	if err := repo.Delete(id); err != nil {
		log.Printf("client delete failed: %v", err)
		return internalError(c, "Could not delete client")
	}
	return c.JSON(fiber.Map{"success": true})
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

// HandleAssignRole writes a client's role tag in one atomic update.
func HandleAssignRole(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid client id")
	}

	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if !models.ValidRole(req.Role) {
		return badRequest(c, "Invalid role: "+req.Role)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if err := repo.AssignRole(id, req.Role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Client not found")
		}
		log.Printf("role assignment failed for user %d: %v", id, err)
		return internalError(c, "Could not assign role")
	}
	return c.JSON(fiber.Map{"success": true, "role": req.Role})
}
