package bookings

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "bookings" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Booking{}}
}

func (p *Plugin) handler(deps *features.Deps) *BookingHandler {
	return NewBookingHandler(NewBookingService(deps.DB, deps.Mailer, deps.Settings))
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := p.handler(deps)

	router.Post("/bookings", h.Create)
	router.Get("/bookings", h.List)
	router.Get("/bookings/upcoming", h.Upcoming)
	router.Get("/bookings/:id", h.Get)
	router.Put("/bookings/:id", h.Update)
	router.Patch("/bookings/:id/status", h.UpdateStatus)
	router.Delete("/bookings/:id", h.Delete)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	router.Get("/bookings", p.handler(deps).Mine)
}
