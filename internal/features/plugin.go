// Package features holds the contract every coaching feature implements and
// the request helpers they share.
package features

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/notify"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the shared collaborators handed to each feature at mount time.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Hub      realtime.Publisher
	Mailer   notify.Sender
	Uploader storage.Uploader
	Settings *services.SettingsService
}

// Feature defines the interface every coaching feature must implement.
type Feature interface {
	// ID returns a short unique name used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterAdminRoutes mounts coach routes. The group has JWT and
	// admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, deps *Deps)
}

// PortalFeature extends Feature with customer portal routes. The group has
// JWT and customer middleware applied, so the caller's customer ID is set.
type PortalFeature interface {
	Feature
	RegisterPortalRoutes(router fiber.Router, deps *Deps)
}

// UserFeature extends Feature with routes open to any authenticated user.
type UserFeature interface {
	Feature
	RegisterUserRoutes(router fiber.Router, deps *Deps)
}
