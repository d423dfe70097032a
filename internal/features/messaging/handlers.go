package messaging

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errStatus = []respond.Status{
	{Err: ErrNotPaired, Code: fiber.StatusForbidden},
	{Err: ErrNoPortalAccount, Code: fiber.StatusConflict},
	{Err: ErrRateLimited, Code: fiber.StatusTooManyRequests},
}

type MessageHandler struct {
	service *MessageService
}

func NewMessageHandler(service *MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	var msg *Message
	if customerID, cerr := authctx.GetCustomerID(c); cerr == nil {
		msg, err = h.service.SendToCoach(userID, customerID, req.Body)
	} else {
		if req.CustomerID == uuid.Nil {
			return respond.BadRequest(c, "customer_id is required")
		}
		msg, err = h.service.SendToCustomer(userID, req.CustomerID, req.Body)
	}
	if err != nil {
		return respond.Map(c, err, "Failed to send message", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	convs, err := h.service.Inbox(userID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch conversations")
	}
	return c.JSON(convs)
}

func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	peerID, err := features.ParamID(c, "userId")
	if err != nil {
		return respond.BadRequest(c, "Invalid user ID")
	}
	limit, _ := features.Page(c, 50, 200)

	var before *time.Time
	if s := c.Query("before"); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return respond.BadRequest(c, "before must be an RFC3339 timestamp")
		}
		before = &t
	}

	msgs, err := h.service.Thread(userID, peerID, limit, before)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch messages")
	}
	return c.JSON(msgs)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	peerID, err := features.ParamID(c, "userId")
	if err != nil {
		return respond.BadRequest(c, "Invalid user ID")
	}

	n, err := h.service.MarkRead(userID, peerID)
	if err != nil {
		return respond.Map(c, err, "Failed to mark messages read")
	}
	return c.JSON(MarkReadResponse{Updated: n})
}

func (h *MessageHandler) Unread(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	n, err := h.service.UnreadCount(userID)
	if err != nil {
		return respond.Map(c, err, "Failed to count unread messages")
	}
	return c.JSON(UnreadResponse{Unread: n})
}
