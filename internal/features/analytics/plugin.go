package analytics

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "analytics" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Event{}}
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := NewAnalyticsHandler(NewAnalyticsService(deps.DB))

	router.Get("/dashboard", h.Dashboard)
	router.Get("/analytics/events", h.EventCounts)
	router.Get("/customers/:customerId/progress", h.CustomerProgress)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	router.Get("/progress", NewAnalyticsHandler(NewAnalyticsService(deps.DB)).MyProgress)
}

// RegisterUserRoutes mounts event ingest for coaches and customers alike.
func (p *Plugin) RegisterUserRoutes(router fiber.Router, deps *features.Deps) {
	router.Post("/events", NewAnalyticsHandler(NewAnalyticsService(deps.DB)).Track)
}
