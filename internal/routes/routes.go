package routes

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the core handlers that are not part of a feature.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Settings *handlers.SettingsHandler
	Health   *handlers.HealthHandler
}

func Setup(app *fiber.App, deps *features.Deps, hub *realtime.Hub, h Handlers, list []features.Feature) {
	cfg := deps.Cfg

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// JWT is applied per route so it does not leak onto the public routes
	// above.
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Post("/auth/password", jwt, h.Auth.ChangePassword)
	api.Delete("/auth/account", jwt, h.Auth.DeleteAccount)

	api.Get("/profile", jwt, h.Profile.Get)
	api.Put("/profile", jwt, h.Profile.Update)
	api.Post("/profile/avatar", jwt, h.Profile.UploadAvatar)

	api.Get("/realtime", jwt, realtime.RequireUpgrade(), hub.Serve())

	admin := api.Group("/admin", jwt, middleware.AdminRequired(deps.DB, cfg))
	admin.Get("/settings", h.Settings.List)
	admin.Put("/settings/:key", h.Settings.Set)
	admin.Delete("/settings/:key", h.Settings.Delete)

	portal := api.Group("/portal", jwt, middleware.CustomerRequired(deps.DB))
	user := api.Group("/user", jwt)

	for _, f := range list {
		f.RegisterAdminRoutes(admin, deps)
		if pf, ok := f.(features.PortalFeature); ok {
			pf.RegisterPortalRoutes(portal, deps)
		}
		if uf, ok := f.(features.UserFeature); ok {
			uf.RegisterUserRoutes(user, deps)
		}
		slog.Debug("feature mounted", "feature", f.ID())
	}
}
