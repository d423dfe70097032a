package bookings

import (
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errStatus = []respond.Status{
	{Err: ErrBookingNotFound, Code: fiber.StatusNotFound},
	{Err: ErrBookingConflict, Code: fiber.StatusConflict},
	{Err: ErrInvalidTransition, Code: fiber.StatusConflict},
}

type BookingHandler struct {
	service *BookingService
}

func NewBookingHandler(service *BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	booking, err := h.service.Create(coachID, req)
	if err != nil {
		return respond.Map(c, err, "Failed to create booking", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var f ListFilter
	if s := c.Query("from"); s != "" {
		from, err := time.Parse(time.RFC3339, s)
		if err != nil {
			if from, err = features.ParseDate(s); err != nil {
				return respond.BadRequest(c, "from must be RFC3339 or YYYY-MM-DD")
			}
		}
		f.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := time.Parse(time.RFC3339, s)
		if err != nil {
			if to, err = features.ParseDate(s); err != nil {
				return respond.BadRequest(c, "to must be RFC3339 or YYYY-MM-DD")
			}
		}
		f.To = &to
	}
	f.Status = c.Query("status")
	if s := c.Query("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return respond.BadRequest(c, "Invalid customer ID")
		}
		f.CustomerID = &id
	}

	bookings, err := h.service.List(coachID, f)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch bookings")
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) Upcoming(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	n, _ := strconv.Atoi(c.Query("n", "5"))
	bookings, err := h.service.Upcoming(coachID, n)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch upcoming bookings")
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid booking ID")
	}

	booking, err := h.service.Get(coachID, id)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch booking", errStatus...)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) Update(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid booking ID")
	}

	var req UpdateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	booking, err := h.service.Update(coachID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to update booking", errStatus...)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid booking ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	booking, err := h.service.UpdateStatus(coachID, id, req.Status)
	if err != nil {
		return respond.Map(c, err, "Failed to update booking status", errStatus...)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) Delete(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid booking ID")
	}

	if err := h.service.Delete(coachID, id); err != nil {
		return respond.Map(c, err, "Failed to delete booking", errStatus...)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BookingHandler) Mine(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	out, err := h.service.ForCustomer(customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch bookings")
	}
	return c.JSON(out)
}
