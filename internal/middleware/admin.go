package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired admits coaches. It checks, in order:
// 1. the role claim on the token
// 2. the ADMIN_EMAILS bootstrap list
// 3. the role stored on the user row (covers promotions since token issue)
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		userID, err := authctx.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if authctx.GetRole(c) == models.RoleAdmin {
			return c.Next()
		}
		if contains(adminEmails, strings.ToLower(authctx.GetEmail(c))) {
			return c.Next()
		}

		if db != nil {
			var user models.User
			if err := db.Select("role").First(&user, "id = ?", userID).Error; err == nil && user.IsAdmin() {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Coach access required",
		})
	}
}

// CustomerRequired admits portal users and resolves their customer record
// into the request context.
func CustomerRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authctx.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if authctx.GetRole(c) != models.RoleCustomer {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Client portal access only",
			})
		}

		customer, err := authctx.CustomerForUser(db, userID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: authctx.ErrNoCustomer.Error(),
			})
		}
		if customer.Status == models.CustomerArchived {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "This coaching account has been archived",
			})
		}

		authctx.SetCustomerID(c, customer.ID)
		return c.Next()
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
