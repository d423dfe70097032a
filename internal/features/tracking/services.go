package tracking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinWeightKg = 20
	MaxWeightKg = 400
	MaxWaterMl  = 5000
)

var ErrLogNotFound = errors.New("log entry not found")

type TrackingService struct {
	db *gorm.DB
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db}
}

func logDate(errs validate.Errors, s string) time.Time {
	d, err := features.DateOrToday(s)
	if err != nil {
		errs.Add("date", err.Error())
	} else if d.After(features.Today()) {
		errs.Add("date", "must not be in the future")
	}
	return d
}

func validateFood(errs validate.Errors, req *FoodLogRequest) {
	req.FoodName = strings.TrimSpace(req.FoodName)
	validate.Required(errs, "food_name", req.FoodName)
	validate.MaxLen(errs, "food_name", req.FoodName, 255)
	validate.OneOf(errs, "meal_type", req.MealType, MealTypes...)
	validate.NonNegative(errs, "quantity", req.Quantity)
	validate.NonNegative(errs, "calories", float64(req.Calories))
	validate.NonNegative(errs, "protein_g", req.ProteinG)
	validate.NonNegative(errs, "carbs_g", req.CarbsG)
	validate.NonNegative(errs, "fat_g", req.FatG)
}

func (s *TrackingService) AddFood(customerID uuid.UUID, req FoodLogRequest) (*FoodLog, error) {
	errs := validate.Errors{}
	date := logDate(errs, req.Date)
	validateFood(errs, &req)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	entry := FoodLog{
		ID:         uuid.New(),
		CustomerID: customerID,
		LogDate:    date,
		MealType:   req.MealType,
		FoodName:   req.FoodName,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Calories:   req.Calories,
		ProteinG:   req.ProteinG,
		CarbsG:     req.CarbsG,
		FatG:       req.FatG,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log food: %w", err)
	}
	return &entry, nil
}

func (s *TrackingService) UpdateFood(customerID, id uuid.UUID, req FoodLogRequest) (*FoodLog, error) {
	var entry FoodLog
	if err := s.db.Scopes(authctx.ForCustomer(customerID)).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	errs := validate.Errors{}
	if req.Date == "" {
		req.Date = entry.LogDate.Format(features.DateLayout)
	}
	date := logDate(errs, req.Date)
	validateFood(errs, &req)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	entry.LogDate = date
	entry.MealType = req.MealType
	entry.FoodName = req.FoodName
	entry.Quantity = req.Quantity
	entry.Unit = req.Unit
	entry.Calories = req.Calories
	entry.ProteinG = req.ProteinG
	entry.CarbsG = req.CarbsG
	entry.FatG = req.FatG
	if err := s.db.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *TrackingService) deleteOwned(customerID, id uuid.UUID, model interface{}) error {
	result := s.db.Scopes(authctx.ForCustomer(customerID)).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLogNotFound
	}
	return nil
}

func (s *TrackingService) DeleteFood(customerID, id uuid.UUID) error {
	return s.deleteOwned(customerID, id, &FoodLog{})
}

func (s *TrackingService) AddWater(customerID uuid.UUID, req WaterLogRequest) (*WaterLog, error) {
	errs := validate.Errors{}
	date := logDate(errs, req.Date)
	validate.IntRange(errs, "amount_ml", req.AmountMl, 1, MaxWaterMl)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	entry := WaterLog{ID: uuid.New(), CustomerID: customerID, LogDate: date, AmountMl: req.AmountMl}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log water: %w", err)
	}
	return &entry, nil
}

func (s *TrackingService) DeleteWater(customerID, id uuid.UUID) error {
	return s.deleteOwned(customerID, id, &WaterLog{})
}

func (s *TrackingService) AddWeight(customerID uuid.UUID, req WeightLogRequest) (*WeightLog, error) {
	errs := validate.Errors{}
	date := logDate(errs, req.Date)
	validateWeight(errs, "weight_kg", req.WeightKg)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var entry *WeightLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = RecordWeight(tx, customerID, date, req.WeightKg, req.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func validateWeight(errs validate.Errors, field string, kg float64) {
	if kg < MinWeightKg || kg > MaxWeightKg {
		errs.Add(field, fmt.Sprintf("must be between %d and %d", MinWeightKg, MaxWeightKg))
	}
}

// RecordWeight stores a weight log and, when it is the customer's most
// recent entry, copies it onto the customer record.
func RecordWeight(tx *gorm.DB, customerID uuid.UUID, date time.Time, kg float64, note string) (*WeightLog, error) {
	entry := WeightLog{ID: uuid.New(), CustomerID: customerID, LogDate: date, WeightKg: kg, Note: note}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to log weight: %w", err)
	}

	var newer int64
	if err := tx.Model(&WeightLog{}).Scopes(authctx.ForCustomer(customerID)).
		Where("log_date > ?", date).Count(&newer).Error; err != nil {
		return nil, err
	}
	if newer == 0 {
		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).
			Update("current_weight_kg", kg).Error; err != nil {
			return nil, err
		}
	}
	return &entry, nil
}

// DeleteWeight removes a weigh-in and moves the customer's current weight to
// the latest one left, or back to the starting weight when none remain.
func (s *TrackingService) DeleteWeight(customerID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(authctx.ForCustomer(customerID)).Where("id = ?", id).Delete(&WeightLog{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLogNotFound
		}
		return SyncCurrentWeight(tx, customerID)
	})
}

// SyncCurrentWeight sets current_weight_kg from the newest weight log.
func SyncCurrentWeight(tx *gorm.DB, customerID uuid.UUID) error {
	var latest WeightLog
	err := tx.Scopes(authctx.ForCustomer(customerID)).
		Order("log_date DESC, created_at DESC").
		First(&latest).Error
	customer := tx.Model(&models.Customer{}).Where("id = ?", customerID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return customer.Update("current_weight_kg", gorm.Expr("starting_weight_kg")).Error
	case err != nil:
		return err
	}
	return customer.Update("current_weight_kg", latest.WeightKg).Error
}

func (s *TrackingService) FoodLogs(customerID uuid.UUID, from, to time.Time) ([]FoodLog, error) {
	var logs []FoodLog
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date BETWEEN ? AND ?", from, to).
		Order("log_date ASC, created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *TrackingService) WaterLogs(customerID uuid.UUID, from, to time.Time) ([]WaterLog, error) {
	var logs []WaterLog
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date BETWEEN ? AND ?", from, to).
		Order("log_date ASC, created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *TrackingService) WeightLogs(customerID uuid.UUID, from, to time.Time) ([]WeightLog, error) {
	var logs []WeightLog
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date BETWEEN ? AND ?", from, to).
		Order("log_date ASC, created_at ASC").
		Find(&logs).Error
	return logs, err
}

// Summary builds the daily summary against the customer's own targets.
func (s *TrackingService) Summary(customerID uuid.UUID, date time.Time) (*DailySummary, error) {
	var customer models.Customer
	if err := s.db.Select("id", "daily_calorie_target", "daily_water_target_ml").
		First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, fmt.Errorf("failed to load customer targets: %w", err)
	}

	foods, err := s.FoodLogs(customerID, date, date)
	if err != nil {
		return nil, err
	}
	waters, err := s.WaterLogs(customerID, date, date)
	if err != nil {
		return nil, err
	}

	summary := Summarize(date, foods, waters, customer.DailyCalorieTarget, customer.DailyWaterTargetMl)

	var latest WeightLog
	err = s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("log_date <= ?", date).
		Order("log_date DESC, created_at DESC").
		First(&latest).Error
	if err == nil {
		summary.LatestWeightKg = &latest.WeightKg
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &summary, nil
}

// ForCoach checks the coach owns customerID before an admin read.
func (s *TrackingService) ForCoach(coachID, customerID uuid.UUID) error {
	_, err := authctx.CustomerForCoach(s.db, coachID, customerID)
	return err
}
