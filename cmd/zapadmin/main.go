package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/cache"
	"github.com/ZapResell/ZapAdmin/internal/pkg/database"
	"github.com/ZapResell/ZapAdmin/internal/pkg/env"
	"github.com/ZapResell/ZapAdmin/internal/pkg/housekeeping"
	"github.com/ZapResell/ZapAdmin/internal/pkg/router"
)

func main() {
	app := NewApplication()

	housekeeping.GetManager().Start()
	defer housekeeping.GetManager().Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	// Elevated secrets are a fatal startup condition. Without this check a
	// missing JWT_SECRET would leave token verification keyed on the empty
	// string.
	env.MustGetEnv("JWT_SECRET")
	env.MustGetEnv("INTERNAL_API_TOKEN")

	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName:   "ZapAdmin",
		BodyLimit: 2 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	if specPath := findOpenAPISpec(); specPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: specPath,
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}

// findOpenAPISpec probes the usual run locations so the binary works both
// from the project root and from cmd/zapadmin.
func findOpenAPISpec() string {
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
