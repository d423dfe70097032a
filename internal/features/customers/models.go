package customers

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/bookings"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/mealplans"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
)

var (
	Genders        = []string{"male", "female", "other", "prefer_not_to_say"}
	ActivityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}
	Statuses       = []string{models.CustomerActive, models.CustomerPaused, models.CustomerArchived}
)

// --- DTOs ---

// CustomerForm carries the wizard data. Steps fill it in order and the
// final submit sends all of it.
type CustomerForm struct {
	// Step 1: identity
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	// Step 2: body metrics
	DateOfBirth      string   `json:"date_of_birth"`
	Gender           string   `json:"gender"`
	HeightCm         *float64 `json:"height_cm"`
	StartingWeightKg *float64 `json:"starting_weight_kg"`
	TargetWeightKg   *float64 `json:"target_weight_kg"`
	ActivityLevel    string   `json:"activity_level"`

	// Step 3: goals and diet
	Goals               []string `json:"goals"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           string   `json:"allergies"`
	MedicalNotes        string   `json:"medical_notes"`
	DailyCalorieTarget  *int     `json:"daily_calorie_target"`
	DailyWaterTargetMl  *int     `json:"daily_water_target_ml"`

	// Step 4: portal access
	PortalPassword string `json:"portal_password"`
}

type UpdateCustomerRequest struct {
	FullName            *string   `json:"full_name"`
	Email               *string   `json:"email"`
	Phone               *string   `json:"phone"`
	DateOfBirth         *string   `json:"date_of_birth"`
	Gender              *string   `json:"gender"`
	HeightCm            *float64  `json:"height_cm"`
	CurrentWeightKg     *float64  `json:"current_weight_kg"`
	TargetWeightKg      *float64  `json:"target_weight_kg"`
	ActivityLevel       *string   `json:"activity_level"`
	Goals               *[]string `json:"goals"`
	DietaryRestrictions *[]string `json:"dietary_restrictions"`
	Allergies           *string   `json:"allergies"`
	MedicalNotes        *string   `json:"medical_notes"`
	DailyCalorieTarget  *int      `json:"daily_calorie_target"`
	DailyWaterTargetMl  *int      `json:"daily_water_target_ml"`
	Status              *string   `json:"status"`
}

type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type CustomerListResponse struct {
	Customers []models.Customer `json:"customers"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

type StepValidation struct {
	Step  int  `json:"step"`
	Valid bool `json:"valid"`
}

// Overview is the coach's at-a-glance card for one customer.
type Overview struct {
	Customer         models.Customer     `json:"customer"`
	HasPortalAccount bool                `json:"has_portal_account"`
	LatestCheckIn    *checkins.CheckIn   `json:"latest_check_in"`
	ActivePlan       *mealplans.MealPlan `json:"active_plan"`
	NextBooking      *bookings.Booking   `json:"next_booking"`
	HabitCompliance  float64             `json:"habit_compliance_7d"`
	WeightChangeKg   *float64            `json:"weight_change_kg"`
	ToGoalKg         *float64            `json:"to_goal_kg"`
}
