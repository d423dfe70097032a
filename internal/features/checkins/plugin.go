package checkins

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "checkins" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&CheckIn{}}
}

func (p *Plugin) handler(deps *features.Deps) *CheckInHandler {
	return NewCheckInHandler(NewCheckInService(deps.DB, deps.Hub, deps.Uploader))
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := p.handler(deps)

	router.Get("/check-ins/pending", h.Pending)
	router.Get("/customers/:customerId/check-ins", h.ListForCustomer)
	router.Put("/check-ins/:id/review", h.Review)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	h := p.handler(deps)

	router.Post("/check-ins", h.Submit)
	router.Get("/check-ins", h.History)
	router.Post("/check-ins/photo", h.UploadPhoto)
}
