package customers

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

// Plugin has no models of its own: Customer lives in the shared models
// package because the portal middleware resolves it.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "customers" }

func (p *Plugin) Models() []interface{} { return nil }

func (p *Plugin) handler(deps *features.Deps) *CustomerHandler {
	return NewCustomerHandler(NewCustomerService(deps.DB, deps.Settings, deps.Mailer, deps.Uploader))
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	h := p.handler(deps)

	router.Post("/customers/validate", h.ValidateStep)
	router.Post("/customers", h.Create)
	router.Get("/customers", h.List)
	router.Get("/customers/:id", h.Get)
	router.Get("/customers/:id/overview", h.Overview)
	router.Put("/customers/:id", h.Update)
	router.Post("/customers/:id/archive", h.Archive)
	router.Post("/customers/:id/portal", h.EnablePortal)
	router.Post("/customers/:id/avatar", h.UploadAvatar)
	router.Delete("/customers/:id", h.Delete)
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	router.Get("/me", p.handler(deps).Me)
}
