package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/gofiber/fiber/v2"
)

var authStatus = []respond.Status{
	{Err: services.ErrEmailTaken, Code: fiber.StatusConflict},
	{Err: services.ErrInvalidCredentials, Code: fiber.StatusUnauthorized},
	{Err: services.ErrInvalidToken, Code: fiber.StatusUnauthorized},
	{Err: services.ErrUserNotFound, Code: fiber.StatusNotFound},
	{Err: services.ErrPasswordRequired, Code: fiber.StatusBadRequest},
}

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return respond.Map(c, err, "Failed to register", authStatus...)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return respond.Map(c, err, "Internal server error", authStatus...)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}
	if req.RefreshToken == "" {
		return respond.BadRequest(c, "refresh_token is required")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return respond.Map(c, err, "Internal server error", authStatus...)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	if err := h.authService.Logout(&req); err != nil {
		return respond.Map(c, err, "Failed to logout")
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	if err := h.authService.ChangePassword(userID, &req); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respond.Error(c, fiber.StatusUnauthorized, "Current password is incorrect")
		}
		return respond.Map(c, err, "Failed to change password", authStatus...)
	}
	return c.JSON(dto.MessageResponse{Message: "Password changed. Please sign in again."})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.InvalidBody(c)
	}

	if err := h.authService.DeleteAccount(userID, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respond.Error(c, fiber.StatusUnauthorized, "Incorrect password. Please try again.")
		}
		return respond.Map(c, err, "Failed to delete account", authStatus...)
	}
	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}
