package handlers

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/respond"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/gofiber/fiber/v2"
)

var settingsStatus = []respond.Status{
	{Err: services.ErrSettingNotFound, Code: fiber.StatusNotFound},
}

// SettingsHandler exposes the coach's key/value preferences, such as the
// default targets applied to new customers.
type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) List(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	all, err := h.settings.All(coachID)
	if err != nil {
		return respond.Map(c, err, "Failed to fetch settings")
	}
	return c.JSON(all)
}

func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	var payload struct {
		Value string `json:"value"`
		Type  string `json:"type"` // string, bool, int, json
	}
	if err := c.BodyParser(&payload); err != nil {
		return respond.InvalidBody(c)
	}

	row, err := h.settings.Set(coachID, c.Params("key"), payload.Value, payload.Type)
	if err != nil {
		return respond.Map(c, err, "Failed to update setting", settingsStatus...)
	}
	return c.JSON(fiber.Map{
		"key":   row.Key,
		"value": services.DecodeSetting(row.Type, row.Value),
		"type":  row.Type,
	})
}

func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	coachID, err := authctx.GetUserID(c)
	if err != nil {
		return respond.Unauthorized(c)
	}

	if err := h.settings.Delete(coachID, c.Params("key")); err != nil {
		return respond.Map(c, err, "Failed to delete setting", settingsStatus...)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
