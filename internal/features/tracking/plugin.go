package tracking

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "tracking" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&FoodLog{},
		&WaterLog{},
		&WeightLog{},
	}
}

// RegisterAdminRoutes exposes read-only views of a customer's logs.
func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := NewTrackingHandler(NewTrackingService(deps.DB))

	router.Get("/customers/:customerId/summary", h.Summary)
	router.Get("/customers/:customerId/food-logs", h.Foods)
	router.Get("/customers/:customerId/water-logs", h.Waters)
	router.Get("/customers/:customerId/weight-logs", h.Weights)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	svc := NewTrackingService(deps.DB)
	h := NewTrackingHandler(svc)

	router.Get("/summary", h.Summary)
	router.Get("/food-logs", h.Foods)
	router.Post("/food-logs", h.AddFood)
	router.Put("/food-logs/:id", h.UpdateFood)
	router.Delete("/food-logs/:id", h.deleter(svc.DeleteFood))
	router.Get("/water-logs", h.Waters)
	router.Post("/water-logs", h.AddWater)
	router.Delete("/water-logs/:id", h.deleter(svc.DeleteWater))
	router.Get("/weight-logs", h.Weights)
	router.Post("/weight-logs", h.AddWeight)
	router.Delete("/weight-logs/:id", h.deleter(svc.DeleteWeight))
}
