package router

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ZapResell/ZapAdmin/app/controllers"
	"github.com/ZapResell/ZapAdmin/internal/pkg/cache"
	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
	"github.com/ZapResell/ZapAdmin/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
	}))

	v1 := api.Group("/v1")
	v1.Post("/auth/login", controllers.HandleLogin)

	// Preflight-style OPTIONS requests carry no credentials, so they must
	// be answered before the token check. The cors middleware intercepts
	// real preflights; this covers bare OPTIONS without the CORS headers.
	v1.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Everything registered below requires a bearer token.
	v1.Use(middleware.TokenAuthMiddleware())
	auth := v1

	auth.Get("/plans", controllers.HandleListPlans)
	auth.Get("/plans/:id", controllers.HandleGetPlan)

	auth.Get("/financial-entries", controllers.HandleListFinancialEntries)
	auth.Post("/financial-entries", controllers.HandleCreateFinancialEntry)
	auth.Put("/financial-entries/:id", controllers.HandleUpdateFinancialEntry)
	auth.Delete("/financial-entries/:id", controllers.HandleDeleteFinancialEntry)

	auth.Get("/instances", controllers.HandleListInstances)
	auth.Post("/instances", controllers.HandleCreateInstance)
	auth.Get("/instances/:id", controllers.HandleGetInstance)
	auth.Delete("/instances/:id", controllers.HandleDeleteInstance)
	auth.Get("/instances/:id/qrcode", controllers.HandleInstanceQRCode)
	auth.Post("/instances/:id/refresh-status", controllers.HandleRefreshInstanceStatus)

	auth.Get("/subscriptions", controllers.HandleListSubscriptions)

	auth.Get("/history/webhooks", controllers.HandleListWebhookEvents)
	auth.Get("/history/automation", controllers.HandleListAutomationLogs)

	auth.Post("/automation/relay", controllers.HandleAutomationRelay)

	// Config handlers gate reads and writes per integration themselves:
	// gateway and n8n secrets are admin-only end to end, while the
	// Evolution endpoint is readable by any logged-in client.
	auth.All("/config/mercadopago", controllers.HandleMercadoPagoConfig)
	auth.All("/config/pagbank", controllers.HandlePagBankConfig)
	auth.All("/config/evolution", controllers.HandleEvolutionConfig)
	auth.All("/config/n8n", controllers.HandleN8NConfig)

	admin := auth.Group("/admin", middleware.RequireAdmin)
	admin.Get("/clients", controllers.HandleListClients)
	admin.Post("/clients", controllers.HandleCreateClient)
	admin.Put("/clients/:id", controllers.HandleUpdateClient)
	admin.Delete("/clients/:id", controllers.HandleDeleteClient)
	admin.Put("/clients/:id/role", controllers.HandleAssignRole)

	admin.Post("/plans", controllers.HandleCreatePlan)
	admin.Put("/plans/:id", controllers.HandleUpdatePlan)
	admin.Delete("/plans/:id", controllers.HandleDeletePlan)

	admin.Post("/subscriptions", controllers.HandleCreateSubscription)
	admin.Put("/subscriptions/:id/status", controllers.HandleUpdateSubscriptionStatus)

	admin.Post("/housekeeping/run", controllers.HandleRunHousekeeping)
}

// limiterStorage backs the rate limiter with Redis so limits hold across
// replicas. Falls back to the limiter's in-memory store when the cache is
// not up, for tests.
func limiterStorage() fiber.Storage {
	cacheClient := cache.GetClient()
	if err := cacheClient.Ping(context.Background()).Err(); err != nil {
		return nil
	}

	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := cacheClient.Options().Password; p != "" {
		password = p
	}

	// Database 1 keeps limiter counters apart from cache entries (DB 0).
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
