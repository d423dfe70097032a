package authctx

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// ForCoach returns a GORM scope that filters by coach_id.
func ForCoach(coachID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("coach_id = ?", coachID)
	}
}

// ForCustomer returns a GORM scope that filters by customer_id.
func ForCustomer(customerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("customer_id = ?", customerID)
	}
}

// OwnedCustomers returns a subquery of customer IDs belonging to the coach,
// for use as `customer_id IN (?)`.
func OwnedCustomers(db *gorm.DB, coachID uuid.UUID) *gorm.DB {
	return db.Model(&models.Customer{}).Select("id").Where("coach_id = ?", coachID)
}

// CustomerForCoach loads a customer and verifies the coach owns it. A customer
// owned by someone else is reported as not found.
func CustomerForCoach(db *gorm.DB, coachID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := db.Scopes(ForCoach(coachID)).First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CustomerForUser resolves the customer record linked to a portal account.
func CustomerForUser(db *gorm.DB, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := db.Where("user_id = ?", userID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCustomer
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
