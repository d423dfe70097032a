package habits

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
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitInactive = errors.New("habit is not active")
	ErrFutureLog     = errors.New("cannot log a habit for a future date")
)

type HabitService struct {
	db *gorm.DB
}

func NewHabitService(db *gorm.DB) *HabitService {
	return &HabitService{db: db}
}

func validateHabit(name, frequency string, target int) error {
	errs := validate.Errors{}
	validate.Required(errs, "name", name)
	validate.MaxLen(errs, "name", name, 255)
	validate.OneOf(errs, "frequency", frequency, FrequencyDaily, FrequencyWeekly)
	validate.IntRange(errs, "target_per_week", target, 1, 7)
	return errs.Err()
}

func (s *HabitService) Create(coachID uuid.UUID, req CreateHabitRequest) (*Habit, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Frequency == "" {
		req.Frequency = FrequencyDaily
	}
	if req.TargetPerWeek == 0 {
		req.TargetPerWeek = 7
	}
	if err := validateHabit(req.Name, req.Frequency, req.TargetPerWeek); err != nil {
		return nil, err
	}
	if _, err := authctx.CustomerForCoach(s.db, coachID, req.CustomerID); err != nil {
		return nil, err
	}

	habit := Habit{
		ID:            uuid.New(),
		CoachID:       coachID,
		CustomerID:    req.CustomerID,
		Name:          req.Name,
		Description:   req.Description,
		Frequency:     req.Frequency,
		TargetPerWeek: req.TargetPerWeek,
		Active:        true,
	}
	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return &habit, nil
}

func (s *HabitService) ListForCoach(coachID, customerID uuid.UUID) ([]Habit, error) {
	if _, err := authctx.CustomerForCoach(s.db, coachID, customerID); err != nil {
		return nil, err
	}
	var habits []Habit
	err := s.db.Scopes(authctx.ForCustomer(customerID)).Order("created_at ASC").Find(&habits).Error
	return habits, err
}

func (s *HabitService) get(coachID, id uuid.UUID) (*Habit, error) {
	var habit Habit
	if err := s.db.Scopes(authctx.ForCoach(coachID)).First(&habit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return &habit, nil
}

func (s *HabitService) Update(coachID, id uuid.UUID, req UpdateHabitRequest) (*Habit, error) {
	habit, err := s.get(coachID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		habit.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.Frequency != nil {
		habit.Frequency = *req.Frequency
	}
	if req.TargetPerWeek != nil {
		habit.TargetPerWeek = *req.TargetPerWeek
	}
	if req.Active != nil {
		habit.Active = *req.Active
	}
	if err := validateHabit(habit.Name, habit.Frequency, habit.TargetPerWeek); err != nil {
		return nil, err
	}

	if err := s.db.Save(habit).Error; err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(coachID, id uuid.UUID) error {
	habit, err := s.get(coachID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habit.ID).Delete(&HabitLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(habit).Error
	})
}

// ActiveForCustomer lists the habits a portal customer is working on.
func (s *HabitService) ActiveForCustomer(customerID uuid.UUID) ([]Habit, error) {
	var habits []Habit
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&habits).Error
	return habits, err
}

// Log records completion of a habit for one day, replacing any earlier log
// for the same habit and date.
func (s *HabitService) Log(customerID, habitID uuid.UUID, req LogHabitRequest) (*HabitLog, error) {
	date, err := features.DateOrToday(req.Date)
	if err != nil {
		return nil, validate.Errors{"date": err.Error()}
	}
	if date.After(features.Today()) {
		return nil, ErrFutureLog
	}

	var habit Habit
	if err := s.db.Scopes(authctx.ForCustomer(customerID)).First(&habit, "id = ?", habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	if !habit.Active {
		return nil, ErrHabitInactive
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	entry := HabitLog{
		ID:         uuid.New(),
		HabitID:    habit.ID,
		CustomerID: customerID,
		LogDate:    date,
		Completed:  completed,
		Note:       req.Note,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "note", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to log habit: %w", err)
	}

	// On conflict the stored row keeps its original id and created_at.
	var stored HabitLog
	if err := s.db.Where("habit_id = ? AND log_date = ?", habit.ID, date).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *HabitService) Logs(customerID uuid.UUID, from, to time.Time) ([]HabitLog, error) {
	var logs []HabitLog
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date BETWEEN ? AND ?", from, to).
		Order("log_date ASC").
		Find(&logs).Error
	return logs, err
}

// ComplianceFor builds the compliance report of a customer's active habits.
func ComplianceFor(db *gorm.DB, customerID uuid.UUID, from, to time.Time) (ComplianceReport, error) {
	var habits []Habit
	if err := db.Scopes(authctx.ForCustomer(customerID)).Where("active = ?", true).Find(&habits).Error; err != nil {
		return ComplianceReport{}, err
	}

	// Logs before from still count toward the current streak.
	streakFrom := to.AddDate(0, 0, -365)
	if from.Before(streakFrom) {
		streakFrom = from
	}
	var logs []HabitLog
	if err := db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date BETWEEN ? AND ? AND completed = ?", streakFrom, features.Today(), true).
		Find(&logs).Error; err != nil {
		return ComplianceReport{}, err
	}
	return Compliance(habits, logs, from, to, features.Today()), nil
}

func (s *HabitService) Compliance(customerID uuid.UUID, from, to time.Time) (ComplianceReport, error) {
	return ComplianceFor(s.db, customerID, from, to)
}

func (s *HabitService) ComplianceForCoach(coachID, customerID uuid.UUID, from, to time.Time) (ComplianceReport, error) {
	if _, err := authctx.CustomerForCoach(s.db, coachID, customerID); err != nil {
		return ComplianceReport{}, err
	}
	return ComplianceFor(s.db, customerID, from, to)
}
