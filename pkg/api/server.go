package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/travigo/railcommute/pkg/api/routes"
	"github.com/travigo/railcommute/pkg/realtime"
)

// NewApp builds the web api over the running tracker. When apiKey is set every change
// needs it as a bearer token, reads stay open.
func NewApp(services *realtime.Services, apiKey string) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(services.Metrics.Handler()))

	group := webApp.Group("/core")
	if apiKey != "" {
		group.Use(requireKeyForChanges(apiKey))
	}

	group.Get("version", routes.APIVersion)

	routes.DeparturesRouter(group.Group("/departures"), services.Board)
	routes.JourneyRouter(group.Group("/journey"), services.Session, services.Board)
	routes.SettingsRouter(group.Group("/settings"), services.Preferences)
	routes.DeviceRouter(group.Group("/device"), services.Route, services.Location, services.Audio)

	return webApp
}

func SetupServer(listen string, services *realtime.Services, apiKey string) error {
	return NewApp(services, apiKey).Listen(listen)
}

func requireKeyForChanges(apiKey string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				return true, nil
			}

			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			c.Status(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"error": "A valid API key must be provided",
			})
		},
	})
}
