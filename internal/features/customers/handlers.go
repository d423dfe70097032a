package customers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/gofiber/fiber/v2"
)

var errStatus = []respond.Status{
	{Err: services.ErrEmailTaken, Code: fiber.StatusConflict},
	{Err: ErrPortalExists, Code: fiber.StatusConflict},
	{Err: ErrInvalidStep, Code: fiber.StatusBadRequest},
}

type CustomerHandler struct {
	service *CustomerService
}

func NewCustomerHandler(service *CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// ValidateStep lets the wizard check one step before moving on.
func (h *CustomerHandler) ValidateStep(c *fiber.Ctx) error {
	step, err := strconv.Atoi(c.Query("step"))
	if err != nil {
		return respond.BadRequest(c, ErrInvalidStep.Error())
	}

	var form CustomerForm
	if err := c.BodyParser(&form); err != nil {
		return respond.InvalidBody(c)
	}

	if err := ValidateStep(step, &form); err != nil {
		return respond.Map(c, err, "Failed to validate step", errStatus...)
	}
	return c.JSON(StepValidation{Step: step, Valid: true})
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var form CustomerForm
	if err := c.BodyParser(&form); err != nil {
		return respond.InvalidBody(c)
	}

	customer, err := h.service.Create(coachID, form)
	if err != nil {
		return respond.Map(c, err, "Failed to create customer", errStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	limit, offset := features.Page(c, 25, 100)
	out, err := h.service.List(coachID, ListFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return respond.Map(c, err, "Failed to fetch customers")
	}
	return c.JSON(out)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.service.Get(coachID, id)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch customer")
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) Overview(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	out, err := h.service.Overview(coachID, id)
	if err != nil {
		return respond.Map(c, err, "Failed to build customer overview")
	}
	return c.JSON(out)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	var req UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	customer, err := h.service.Update(coachID, id, req)
	if err != nil {
		return respond.Map(c, err, "Failed to update customer", errStatus...)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) Archive(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.service.Archive(coachID, id)
	if err != nil {
		return respond.Map(c, err, "Failed to archive customer")
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	if err := h.service.Delete(coachID, id); err != nil {
		return respond.Map(c, err, "Failed to delete customer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type enablePortalRequest struct {
	Password string `json:"portal_password"`
}

func (h *CustomerHandler) EnablePortal(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}

	var req enablePortalRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	customer, err := h.service.EnablePortal(coachID, id, req.Password)
	if err != nil {
		return respond.Map(c, err, "Failed to enable portal access", errStatus...)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) UploadAvatar(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}
	id, err := features.ParamID(c, "id")
	if err != nil {
		return respond.BadRequest(c, "Invalid customer ID")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "file is required")
	}

	url, err := h.service.UploadAvatar(c.UserContext(), coachID, id, fh)
	if err != nil {
		return respond.Map(c, err, "Failed to upload avatar")
	}
	return c.JSON(dto.UploadResponse{URL: url})
}

// Me returns the portal customer's own record.
func (h *CustomerHandler) Me(c *fiber.Ctx) error {
	customerID, err := authctx.GetCustomerID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	customer, err := h.service.ForPortal(customerID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch customer")
	}
	return c.JSON(customer)
}
