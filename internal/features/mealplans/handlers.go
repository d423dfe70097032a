package mealplans

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errStatus = []respond.Status{
	{Err: ErrPlanNotFound, Code: fiber.StatusNotFound},
	{Err: ErrNoActivePlan, Code: fiber.StatusNotFound},
}

type MealPlanHandler struct {
	service *MealPlanService
}

func NewMealPlanHandler(service *MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{service: service}
}

func (h *MealPlanHandler) Create(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	plan, err := h.service.Create(coachID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to create meal plan", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *MealPlanHandler) List(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var customerID *uuid.UUID
	if s := c.Query("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return respond.BadRequest(c, "Invalid customer ID")
		}
		customerID = &id
	}

	plans, err := h.service.List(coachID, customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch meal plans")
	}
	return c.JSON(plans)
}

func (h *MealPlanHandler) Get(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid meal plan ID")
	}

	out, err := h.service.GetGrid(coachID, id)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch meal plan", errStatus...)
	}
	return c.JSON(out)
}

func (h *MealPlanHandler) Update(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid meal plan ID")
	}

	var req UpdatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	plan, err := h.service.Update(coachID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to update meal plan", errStatus...)
	}
	return c.JSON(plan)
}

func (h *MealPlanHandler) SaveGrid(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid meal plan ID")
	}

	var req SaveGridRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	out, err := h.service.SaveGrid(coachID, id, req.Grid)
	if err != nil {
		return respond.Map(c, err, "Failed to save meal grid", errStatus...)
	}
	return c.JSON(out)
}

func (h *MealPlanHandler) Duplicate(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid meal plan ID")
	}

	var req DuplicatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	out, err := h.service.Duplicate(coachID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to duplicate meal plan", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *MealPlanHandler) Delete(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid meal plan ID")
	}

	if err := h.service.Delete(coachID, id); err != nil {
		return respond.Map(c, err, "Failed to delete meal plan", errStatus...)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MealPlanHandler) Active(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	out, err := h.service.Active(customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch meal plan", errStatus...)
	}
	return c.JSON(out)
}
