package tracking

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errStatus = []respond.Status{
	{Err: ErrLogNotFound, Code: fiber.StatusNotFound},
}

type TrackingHandler struct {
	service *TrackingService
}

func NewTrackingHandler(service *TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// subject resolves whose logs are being read: the portal caller, or the
// customer in the route when a coach is asking.
func (h *TrackingHandler) subject(c *fiber.Ctx) (uuid.UUID, error) {
	if id, err := authctx.GetCustomerID(c); err == nil {
		return id, nil
	}
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return uuid.Nil, err
	}
	customerID, err := features.ParamID(c, "customerId")
	if err != nil {
		return uuid.Nil, validate.Errors{"customer_id": "must be a valid UUID"}
	}
	if err := h.service.ForCoach(coachID, customerID); err != nil {
		return uuid.Nil, err
	}
	return customerID, nil
}

func (h *TrackingHandler) Summary(c *fiber.Ctx) error {
	customerID, err := h.subject(c)
	if err != nil {
		return respond.Map(c, err, "Failed to resolve customer")
	}
	date, err := features.DateOrToday(c.Query("date"))
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	summary, err := h.service.Summary(customerID, date)
	if err != nil {
		return respond.Map(c, err, "Failed to build daily summary")
	}
	return c.JSON(summary)
}

func (h *TrackingHandler) Foods(c *fiber.Ctx) error {
	customerID, err := h.subject(c)
	if err != nil {
		return respond.Map(c, err, "Failed to resolve customer")
	}
	from, to, err := features.Range(c, 7)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	logs, err := h.service.FoodLogs(customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch food logs")
	}
	return c.JSON(logs)
}

func (h *TrackingHandler) Waters(c *fiber.Ctx) error {
	customerID, err := h.subject(c)
	if err != nil {
		return respond.Map(c, err, "Failed to resolve customer")
	}
	from, to, err := features.Range(c, 7)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	logs, err := h.service.WaterLogs(customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch water logs")
	}
	return c.JSON(logs)
}

func (h *TrackingHandler) Weights(c *fiber.Ctx) error {
	customerID, err := h.subject(c)
	if err != nil {
		return respond.Map(c, err, "Failed to resolve customer")
	}
	from, to, err := features.Range(c, 90)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	logs, err := h.service.WeightLogs(customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch weight logs")
	}
	return c.JSON(logs)
}

func (h *TrackingHandler) AddFood(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	var req FoodLogRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	entry, err := h.service.AddFood(customerID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to log food")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *TrackingHandler) UpdateFood(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid log ID")
	}
	var req FoodLogRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	entry, err := h.service.UpdateFood(customerID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to update food log", errStatus...)
	}
	return c.JSON(entry)
}

func (h *TrackingHandler) AddWater(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	var req WaterLogRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	entry, err := h.service.AddWater(customerID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to log water")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *TrackingHandler) AddWeight(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	var req WeightLogRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	entry, err := h.service.AddWeight(customerID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to log weight")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// deleter adapts one of the service's Delete methods into a handler.
func (h *TrackingHandler) deleter(del func(customerID, id uuid.UUID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := authctx.GetCustomerID(c)
		if err != nil {
			return respond.Unauthorized(c)
		}
		id, err := features.ParamID(c, "id")
		if err != nil {
			return respond.BadRequest(c, "Invalid log ID")
		}
		if err := del(customerID, id); err != nil {
			return respond.Map(c, err, "Failed to delete log", errStatus...)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
