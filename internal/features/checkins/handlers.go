package checkins

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
)

var errStatus = []respond.Status{
	{Err: ErrCheckInNotFound, Code: fiber.StatusNotFound},
	{Err: ErrCheckInExists, Code: fiber.StatusConflict},
	{Err: ErrFutureCheckIn, Code: fiber.StatusBadRequest},
}

type CheckInHandler struct {
	service *CheckInService
}

func NewCheckInHandler(service *CheckInService) *CheckInHandler {
	return &CheckInHandler{service: service}
}

type listResponse struct {
	CheckIns []CheckIn `json:"check_ins"`
	Total    int64     `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

func (h *CheckInHandler) Submit(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req SubmitCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	checkIn, err := h.service.Submit(customerID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to submit check-in", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(checkIn)
}

func (h *CheckInHandler) History(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	limit, offset := features.Page(c, 20, 100)

	items, total, err := h.service.History(customerID, limit, offset)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch check-ins")
	}
	return c.JSON(listResponse{CheckIns: items, Total: total, Limit: limit, Offset: offset})
}

func (h *CheckInHandler) UploadPhoto(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "file is required")
	}

	url, err := h.service.UploadPhoto(c.UserContext(), customerID, fh)
	if err != nil {
		return respond.Map(c, err, "Failed to upload photo", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{URL: url})
}

func (h *CheckInHandler) ListForCustomer(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	customerID, err := features.ParamID(c, "customerId")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}
	limit, offset := features.Page(c, 20, 100)

	items, total, err := h.service.ListForCoach(coachID, customerID, limit, offset)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch check-ins")
	}
	return c.JSON(listResponse{CheckIns: items, Total: total, Limit: limit, Offset: offset})
}

func (h *CheckInHandler) Pending(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	limit, _ := features.Page(c, 50, 200)

	items, err := h.service.Pending(coachID, limit)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch pending check-ins")
	}
	return c.JSON(items)
}

func (h *CheckInHandler) Review(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid check-in ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	checkIn, err := h.service.Review(coachID, id, req.Feedback)
	if err != nil {
		return respond.Map(c, err, "Failed to review check-in", errStatus...)
	}
	return c.JSON(checkIn)
}
