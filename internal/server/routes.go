package server

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the /api endpoints on app.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")
	api.Get("/health", handler.Health)
	api.Get("/knowledge", handler.Knowledge)
	api.Post("/diagnose", handler.Diagnose)
	api.Post("/diagnose/explain", handler.Explain)
}
