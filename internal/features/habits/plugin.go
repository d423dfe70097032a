package habits

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "habits" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&Habit{},
		&HabitLog{},
	}
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := NewHabitHandler(NewHabitService(deps.DB))

	router.Post("/habits", h.Create)
	router.Get("/customers/:customerId/habits", h.ListForCustomer)
	router.Get("/customers/:customerId/habits/compliance", h.CustomerCompliance)
	router.Put("/habits/:id", h.Update)
	router.Delete("/habits/:id", h.Delete)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	h := NewHabitHandler(NewHabitService(deps.DB))

	router.Get("/habits", h.Mine)
	router.Get("/habits/logs", h.MyLogs)
	router.Get("/habits/compliance", h.MyCompliance)
	router.Put("/habits/:id/log", h.Log)
}
