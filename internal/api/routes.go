package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)
	app.Get("/version", h.Version)

	app.Post("/v1/debate", h.Debate)
	app.Post("/v1/boardroom", h.Boardroom)
	app.Post("/v1/ingest", h.Ingest)
	app.Get("/v1/pulse", h.Pulse)
}
