package analytics

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errStatus = []respond.Status{
	{Err: ErrInvalidEventType, Code: fiber.StatusBadRequest},
	{Err: ErrPropertiesTooLarge, Code: fiber.StatusRequestEntityTooLarge},
}

type AnalyticsHandler struct {
	service *AnalyticsService
}

func NewAnalyticsHandler(service *AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Track(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	// Tracking goes through the user group, so the portal middleware has not
	// run; resolve the customer link here.
	var customerID *uuid.UUID
	if authctx.GetRole(c) == models.RoleCustomer {
		if customer, err := authctx.CustomerForUser(h.service.db, userID); err == nil {
			customerID = &customer.ID
		}
	}

	event, err := h.service.Track(userID, customerID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to track event", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	d, err := h.service.Dashboard(coachID)
	if err != nil {
		return respond.Map(c, err, "Failed to build dashboard")
	}
	return c.JSON(d)
}

func (h *AnalyticsHandler) CustomerProgress(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	customerID, err := features.ParamID(c, "customerId")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}
	days, _ := strconv.Atoi(c.Query("days", "30"))

	p, err := h.service.CustomerProgressForCoach(coachID, customerID, days)
	if err != nil {
		return respond.Map(c, err, "Failed to build progress report")
	}
	return c.JSON(p)
}

func (h *AnalyticsHandler) MyProgress(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	days, _ := strconv.Atoi(c.Query("days", "30"))

	p, err := h.service.CustomerProgress(customerID, days)
	if err != nil {
		return respond.Map(c, err, "Failed to build progress report")
	}
	return c.JSON(p)
}

func (h *AnalyticsHandler) EventCounts(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	days, _ := strconv.Atoi(c.Query("days", "30"))

	counts, err := h.service.EventCounts(coachID, days)
	if err != nil {
		return respond.Map(c, err, "Failed to count events")
	}
	return c.JSON(counts)
}
