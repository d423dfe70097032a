// Package authctx reads the authenticated caller out of a fiber context and
// provides the ownership scopes that stand in for row-level security.
package authctx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localUser       = "user"
	localCustomerID = "customer_id"
)

var ErrNoCustomer = errors.New("no customer record linked to this account")

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(localUser).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// GetRole returns the role claim, or "" when absent.
func GetRole(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	role, _ := mc["role"].(string)
	return role
}

func GetEmail(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}

// SetCustomerID is used by the portal middleware once the caller's customer
// record has been resolved.
func SetCustomerID(c *fiber.Ctx, id uuid.UUID) {
	c.Locals(localCustomerID, id)
}

// GetCustomerID returns the customer record of a portal caller.
func GetCustomerID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(localCustomerID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoCustomer
	}
	return id, nil
}
