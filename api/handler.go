package api

import (
	"github.com/gofiber/fiber/v2"
)

type LeaseHandler interface {
	PostReserve(ctx *fiber.Ctx) error
	PostRelease(ctx *fiber.Ctx) error
	PostHeartbeat(ctx *fiber.Ctx) error
	GetList(ctx *fiber.Ctx) error
	GetPorts(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
}

// RegisterRoutes mounts the lease API and the health check on app
func RegisterRoutes(app fiber.Router, handler LeaseHandler) {
	app.Post("/reserve", handler.PostReserve)
	app.Post("/release", handler.PostRelease)
	app.Post("/heartbeat", handler.PostHeartbeat)
	app.Get("/list", handler.GetList)
	app.Get("/ports/:name", handler.GetPorts)
	app.Get("/stats", handler.GetStats)
	app.Get("/health", HealthCheck)
}
