package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/usercontext"
)

// handleSingletonConfig is the shared handler for every integration config
// table: GET returns the single row (or null when absent), POST and PUT both
// upsert by the fixed id, anything else is 405. Writes always require admin;
// whether GET does varies per integration.
func handleSingletonConfig[T any](
	c *fiber.Ctx,
	adminRead bool,
	get func() (*T, error),
	upsert func(*T) (*T, error),
	missingFields func(*T) []string,
) error {
	switch c.Method() {
	case fiber.MethodGet:
		if adminRead && !usercontext.IsAdmin(c) {
			return forbidden(c, "Admin role required")
		}
		cfg, err := get()
		if err != nil {
			log.Printf("config fetch failed: %v", err)
			return internalError(c, "Could not load configuration")
		}
		// Absent singleton is null, not 404.
		return c.JSON(cfg)

	case fiber.MethodPost, fiber.MethodPut:
		if !usercontext.IsAdmin(c) {
			return forbidden(c, "Admin role required")
		}
		cfg := new(T)
		if err := c.BodyParser(cfg); err != nil {
			return badRequest(c, "Invalid JSON body")
		}
		if missing := missingFields(cfg); len(missing) > 0 {
			return badRequest(c, "Missing required fields: "+strings.Join(missing, ", "))
		}
		stored, err := upsert(cfg)
		if err != nil {
			log.Printf("config upsert failed: %v", err)
			return internalError(c, "Could not save configuration")
		}
		return c.JSON(fiber.Map{"success": true, "config": stored})

	default:
		return methodNotAllowed(c)
	}
}

// HandleMercadoPagoConfig manages the Mercado Pago gateway credentials.
func HandleMercadoPagoConfig(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetConfigRepository()
	return handleSingletonConfig(c, true,
		repo.GetMercadoPago,
		repo.UpsertMercadoPago,
		(*models.MercadoPagoConfig).MissingFields,
	)
}

// HandlePagBankConfig manages the PagBank gateway credentials.
func HandlePagBankConfig(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetConfigRepository()
	return handleSingletonConfig(c, true,
		repo.GetPagBank,
		repo.UpsertPagBank,
		(*models.PagBankConfig).MissingFields,
	)
}

// HandleEvolutionConfig manages the Evolution API server settings. Resellers
// read this one too, so GET is open to any authenticated caller.
func HandleEvolutionConfig(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetConfigRepository()
	return handleSingletonConfig(c, false,
		repo.GetEvolution,
		repo.UpsertEvolution,
		(*models.EvolutionConfig).MissingFields,
	)
}

// HandleN8NConfig manages the n8n automation webhook target.
func HandleN8NConfig(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetConfigRepository()
	return handleSingletonConfig(c, true,
		repo.GetN8N,
		repo.UpsertN8N,
		(*models.N8NConfig).MissingFields,
	)
}
