package habits

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
)

var errStatus = []respond.Status{
	{Err: ErrHabitNotFound, Code: fiber.StatusNotFound},
	{Err: ErrHabitInactive, Code: fiber.StatusConflict},
	{Err: ErrFutureLog, Code: fiber.StatusBadRequest},
}

type HabitHandler struct {
	service *HabitService
}

func NewHabitHandler(service *HabitService) *HabitHandler {
	return &HabitHandler{service: service}
}

func (h *HabitHandler) Create(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req CreateHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	habit, err := h.service.Create(coachID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to create habit", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(habit)
}

func (h *HabitHandler) ListForCustomer(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	customerID, err := features.ParamID(c, "customerId")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	habits, err := h.service.ListForCoach(coachID, customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch habits")
	}
	return c.JSON(habits)
}

func (h *HabitHandler) CustomerCompliance(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	customerID, err := features.ParamID(c, "customerId")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}
	from, to, err := features.Range(c, 7)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	report, err := h.service.ComplianceForCoach(coachID, customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to compute compliance")
	}
	return c.JSON(report)
}

func (h *HabitHandler) Update(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid habit ID")
	}

	var req UpdateHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	habit, err := h.service.Update(coachID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to update habit", errStatus...)
	}
	return c.JSON(habit)
}

func (h *HabitHandler) Delete(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid habit ID")
	}

	if err := h.service.Delete(coachID, id); err != nil {
		return respond.Map(c, err, "Failed to delete habit", errStatus...)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HabitHandler) Mine(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	habits, err := h.service.ActiveForCustomer(customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch habits")
	}
	return c.JSON(habits)
}

func (h *HabitHandler) Log(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	habitID, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid habit ID")
	}

	var req LogHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	entry, err := h.service.Log(customerID, habitID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to log habit", errStatus...)
	}
	return c.JSON(entry)
}

func (h *HabitHandler) MyLogs(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	from, to, err := features.Range(c, 7)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	logs, err := h.service.Logs(customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch habit logs")
	}
	return c.JSON(logs)
}

func (h *HabitHandler) MyCompliance(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	from, to, err := features.Range(c, 7)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}

	report, err := h.service.Compliance(customerID, from, to)
	if err != nil {
		return respond.Map(c, err, "Failed to compute compliance")
	}
	return c.JSON(report)
}
