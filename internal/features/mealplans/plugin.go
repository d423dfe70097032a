package mealplans

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "mealplans" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&MealPlan{},
		&MealItem{},
	}
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := NewMealPlanHandler(NewMealPlanService(deps.DB))

	router.Post("/meal-plans", h.Create)
	router.Get("/meal-plans", h.List)
	router.Get("/meal-plans/:id", h.Get)
	router.Put("/meal-plans/:id", h.Update)
	router.Put("/meal-plans/:id/grid", h.SaveGrid)
	router.Post("/meal-plans/:id/duplicate", h.Duplicate)
	router.Delete("/meal-plans/:id", h.Delete)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	h := NewMealPlanHandler(NewMealPlanService(deps.DB))
	router.Get("/meal-plan", h.Active)
}
