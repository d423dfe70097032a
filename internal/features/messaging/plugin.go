package messaging

import (
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/gofiber/fiber/v2"
)

// Plugin shares one limiter between the admin and portal surfaces so a
// sender's budget is global.
type Plugin struct {
	once    sync.Once
	limiter *SenderLimiter
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string { return "messaging" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Message{}}
}

func (p *Plugin) handler(deps *features.Deps) *MessageHandler {
	p.once.Do(func() {
		p.limiter = NewSenderLimiter(deps.Cfg.MessageRatePerSec, deps.Cfg.MessageBurst)
		p.limiter.StartCleanup(time.Minute, 10*time.Minute)
	})
	return NewMessageHandler(NewMessageService(deps.DB, deps.Hub, p.limiter))
}

func (p *Plugin) mount(router fiber.Router, h *MessageHandler) {
	router.Get("/messages", h.Inbox)
	router.Post("/messages", h.Send)
	router.Get("/messages/unread", h.Unread)
	router.Get("/messages/:userId", h.Thread)
	router.Post("/messages/:userId/read", h.MarkRead)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *features.Deps) {
	p.mount(router, p.handler(deps))
}

func (p *Plugin) RegisterPortalRoutes(router fiber.Router, deps *features.Deps) {
	p.mount(router, p.handler(deps))
}
