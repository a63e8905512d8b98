package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ZapResell/ZapAdmin/app/controllers"
	"github.com/ZapResell/ZapAdmin/internal/pkg/middleware"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// The dashboard frontend is served from a separate origin.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Machine-to-machine intake. Webhook senders cannot carry our auth
	// tokens; the handlers validate payload shape instead.
	webhooks := app.Group("/webhook")
	webhooks.Post("/evolution", controllers.HandleEvolutionWebhook)
	webhooks.Post("/n8n", controllers.HandleN8NWebhook)

	// Loopback surface for the housekeeping job.
	internal := app.Group("/internal", middleware.InternalTokenMiddleware())
	internal.Post("/subscriptions/:id/suspend", controllers.HandleInternalSuspend)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
