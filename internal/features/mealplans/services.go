package mealplans

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPlanNotFound = errors.New("meal plan not found")
	ErrNoActivePlan = errors.New("no active meal plan")
)

type MealPlanService struct {
	db *gorm.DB
}

func NewMealPlanService(db *gorm.DB) *MealPlanService {
	return &MealPlanService{db: db}
}

func parseWeekStart(errs validate.Errors, s string) time.Time {
	if s == "" {
		errs.Add("week_start", "is required")
		return time.Time{}
	}
	t, err := features.ParseDate(s)
	if err != nil {
		errs.Add("week_start", err.Error())
	}
	return t
}

func (s *MealPlanService) Create(coachID uuid.UUID, req CreatePlanRequest) (*MealPlan, error) {
	errs := validate.Errors{}
	req.Name = strings.TrimSpace(req.Name)
	validate.Required(errs, "name", req.Name)
	validate.MaxLen(errs, "name", req.Name, 255)
	weekStart := parseWeekStart(errs, req.WeekStart)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := authctx.CustomerForCoach(s.db, coachID, req.CustomerID); err != nil {
		return nil, err
	}

	plan := MealPlan{
		ID:         uuid.New(),
		CoachID:    coachID,
		CustomerID: req.CustomerID,
		Name:       req.Name,
		WeekStart:  weekStart,
		Notes:      req.Notes,
		Active:     req.Active,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if plan.Active {
			if err := deactivateOthers(tx, plan.CustomerID, plan.ID); err != nil {
				return err
			}
		}
		return tx.Create(&plan).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}
	return &plan, nil
}

func deactivateOthers(tx *gorm.DB, customerID, keep uuid.UUID) error {
	return tx.Model(&MealPlan{}).
		Where("customer_id = ? AND id <> ? AND active = ?", customerID, keep, true).
		Update("active", false).Error
}

func (s *MealPlanService) List(coachID uuid.UUID, customerID *uuid.UUID) ([]MealPlan, error) {
	q := s.db.Scopes(authctx.ForCoach(coachID))
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	var plans []MealPlan
	err := q.Order("week_start DESC").Find(&plans).Error
	return plans, err
}

func (s *MealPlanService) Get(coachID, id uuid.UUID) (*MealPlan, error) {
	var plan MealPlan
	if err := s.db.Scopes(authctx.ForCoach(coachID)).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *MealPlanService) Update(coachID, id uuid.UUID, req UpdatePlanRequest) (*MealPlan, error) {
	plan, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}

	errs := validate.Errors{}
	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
		validate.Required(errs, "name", plan.Name)
		validate.MaxLen(errs, "name", plan.Name, 255)
	}
	if req.WeekStart != nil {
		plan.WeekStart = parseWeekStart(errs, *req.WeekStart)
	}
	if req.Notes != nil {
		plan.Notes = *req.Notes
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if plan.Active {
			if err := deactivateOthers(tx, plan.CustomerID, plan.ID); err != nil {
				return err
			}
		}
		return tx.Omit("Items").Save(plan).Error
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *MealPlanService) Delete(coachID, id uuid.UUID) error {
	plan, err := s.Get(coachID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_plan_id = ?", plan.ID).Delete(&MealItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(plan).Error
	})
}

func (s *MealPlanService) withGrid(plan *MealPlan) (*PlanWithGrid, error) {
	var items []MealItem
	if err := s.db.Where("meal_plan_id = ?", plan.ID).Find(&items).Error; err != nil {
		return nil, err
	}
	g := BuildGrid(items)
	return &PlanWithGrid{Plan: *plan, Grid: g, Totals: Totals(g)}, nil
}

func (s *MealPlanService) GetGrid(coachID, id uuid.UUID) (*PlanWithGrid, error) {
	plan, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}
	return s.withGrid(plan)
}

// SaveGrid replaces every item of the plan with the submitted grid.
func (s *MealPlanService) SaveGrid(coachID, id uuid.UUID, g Grid) (*PlanWithGrid, error) {
	if err := ValidateGrid(g); err != nil {
		return nil, err
	}
	plan, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}

	items := FlattenGrid(plan.ID, g)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Concurrent saves queue on the plan row so the later grid replaces
		// the earlier one whole.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&MealPlan{}, "id = ?", plan.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("meal_plan_id = ?", plan.ID).Delete(&MealItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, 100).Error; err != nil {
				return err
			}
		}
		return tx.Model(plan).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save meal grid: %w", err)
	}

	return &PlanWithGrid{Plan: *plan, Grid: BuildGrid(items), Totals: Totals(g)}, nil
}

// Duplicate copies a plan and its grid into another week. The copy starts
// inactive.
func (s *MealPlanService) Duplicate(coachID, id uuid.UUID, req DuplicatePlanRequest) (*PlanWithGrid, error) {
	errs := validate.Errors{}
	weekStart := parseWeekStart(errs, req.WeekStart)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	src, err := s.GetGrid(coachID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = src.Plan.Name
	}
	plan := MealPlan{
		ID:         uuid.New(),
		CoachID:    coachID,
		CustomerID: src.Plan.CustomerID,
		Name:       name,
		WeekStart:  weekStart,
		Notes:      src.Plan.Notes,
	}
	items := FlattenGrid(plan.ID, src.Grid)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			return tx.CreateInBatches(items, 100).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate meal plan: %w", err)
	}
	return &PlanWithGrid{Plan: plan, Grid: src.Grid, Totals: src.Totals}, nil
}

// Active returns the customer's active plan with its grid.
func (s *MealPlanService) Active(customerID uuid.UUID) (*PlanWithGrid, error) {
	plan, err := ActiveForCustomer(s.db, customerID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoActivePlan
	}
	return s.withGrid(plan)
}

// ActiveForCustomer returns the active plan or nil when there is none.
func ActiveForCustomer(db *gorm.DB, customerID uuid.UUID) (*MealPlan, error) {
	var plan MealPlan
	err := db.Scopes(authctx.ForCustomer(customerID)).
		Where("active = ?", true).
		Order("week_start DESC").
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
