package customers

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
)

const (
	StepIdentity = 1
	StepMetrics  = 2
	StepGoals    = 3
	StepPortal   = 4
	StepCount    = 4

	MinHeightCm = 50
	MaxHeightCm = 272
	MinWeightKg = 20
	MaxWeightKg = 400

	maxListItems = 20
)

var ErrInvalidStep = fmt.Errorf("step must be between 1 and %d", StepCount)

// ValidateStep checks the fields one wizard step is responsible for.
func ValidateStep(step int, f *CustomerForm) error {
	errs := validate.Errors{}
	switch step {
	case StepIdentity:
		validateIdentity(errs, f)
	case StepMetrics:
		validateMetrics(errs, f)
	case StepGoals:
		validateGoals(errs, f)
	case StepPortal:
		validatePortal(errs, f)
	default:
		return ErrInvalidStep
	}
	return errs.Err()
}

// ValidateAll runs every step and reports all problems at once.
func ValidateAll(f *CustomerForm) error {
	errs := validate.Errors{}
	validateIdentity(errs, f)
	validateMetrics(errs, f)
	validateGoals(errs, f)
	validatePortal(errs, f)
	return errs.Err()
}

func validateIdentity(errs validate.Errors, f *CustomerForm) {
	validate.Required(errs, "full_name", f.FullName)
	validate.MaxLen(errs, "full_name", f.FullName, 255)
	validate.Email(errs, "email", strings.TrimSpace(f.Email))
	validate.MaxLen(errs, "phone", f.Phone, 50)
}

func validateMetrics(errs validate.Errors, f *CustomerForm) {
	if f.DateOfBirth != "" {
		dob, err := features.ParseDate(f.DateOfBirth)
		if err != nil {
			errs.Add("date_of_birth", err.Error())
		} else if !dob.Before(features.Today()) {
			errs.Add("date_of_birth", "must be in the past")
		}
	}
	if f.Gender != "" {
		validate.OneOf(errs, "gender", f.Gender, Genders...)
	}
	validate.OptionalFloatRange(errs, "height_cm", f.HeightCm, MinHeightCm, MaxHeightCm)
	validate.OptionalFloatRange(errs, "starting_weight_kg", f.StartingWeightKg, MinWeightKg, MaxWeightKg)
	validate.OptionalFloatRange(errs, "target_weight_kg", f.TargetWeightKg, MinWeightKg, MaxWeightKg)
	if f.ActivityLevel != "" {
		validate.OneOf(errs, "activity_level", f.ActivityLevel, ActivityLevels...)
	}
}

func validateGoals(errs validate.Errors, f *CustomerForm) {
	validateList(errs, "goals", f.Goals)
	validateList(errs, "dietary_restrictions", f.DietaryRestrictions)
	validate.MaxLen(errs, "allergies", f.Allergies, 2000)
	validate.MaxLen(errs, "medical_notes", f.MedicalNotes, 4000)
	validate.OptionalIntRange(errs, "daily_calorie_target", f.DailyCalorieTarget, 800, 10000)
	validate.OptionalIntRange(errs, "daily_water_target_ml", f.DailyWaterTargetMl, 500, 10000)
}

func validatePortal(errs validate.Errors, f *CustomerForm) {
	if f.PortalPassword != "" && len(f.PortalPassword) < services.MinPasswordLength {
		errs.Add("portal_password", fmt.Sprintf("must be at least %d characters", services.MinPasswordLength))
	}
}

func validateList(errs validate.Errors, field string, items []string) {
	if len(items) > maxListItems {
		errs.Add(field, fmt.Sprintf("must have at most %d entries", maxListItems))
		return
	}
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			errs.Add(field, "entries must not be blank")
			return
		}
		if len([]rune(it)) > 100 {
			errs.Add(field, "entries must be at most 100 characters")
			return
		}
	}
}

// cleanList trims entries and drops duplicates, keeping order.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// WeightChange is current minus starting weight, rounded to 0.1 kg.
func WeightChange(starting, current *float64) *float64 {
	if starting == nil || current == nil {
		return nil
	}
	d := roundKg(*current - *starting)
	return &d
}

func roundKg(f float64) float64 {
	if f < 0 {
		return -roundKg(-f)
	}
	return float64(int64(f*10+0.5)) / 10
}
