package handlers

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	user, err := h.profileService.Get(userID)
	if err != nil {
		return respond.Map(c, err, "Failed to load profile", authStatus...)
	}
	return c.JSON(user)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	user, err := h.profileService.Update(userID, &req)
	if err != nil {
		return respond.Map(c, err, "Failed to update profile", authStatus...)
	}
	return c.JSON(user)
}

// UploadAvatar expects a multipart form with the image in the "file" field.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return respond.BadRequest(c, "file is required")
	}

	url, err := h.profileService.UploadAvatar(c.UserContext(), userID, fh)
	if err != nil {
		return respond.Map(c, err, "Failed to upload avatar", authStatus...)
	}
	return c.JSON(dto.UploadResponse{URL: url})
}
