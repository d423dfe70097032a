package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SettingWaterTarget       = "default_water_target_ml"
	SettingCalorieTarget     = "default_calorie_target"
	SettingCheckInDay        = "check_in_day"
	SettingSendBookingEmails = "send_booking_emails"
)

var ErrSettingNotFound = errors.New("setting not found")

var defaultSettings = []models.CoachSetting{
	{Key: SettingWaterTarget, Value: "2500", Type: "int"},
	{Key: SettingCalorieTarget, Value: "2000", Type: "int"},
	{Key: SettingCheckInDay, Value: "monday", Type: "string"},
	{Key: SettingSendBookingEmails, Value: "true", Type: "bool"},
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// SeedDefaults inserts any default key the coach does not have yet.
func (s *SettingsService) SeedDefaults(tx *gorm.DB, coachID uuid.UUID) error {
	for _, d := range defaultSettings {
		var existing models.CoachSetting
		err := tx.Where("coach_id = ? AND key = ?", coachID, d.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := models.CoachSetting{CoachID: coachID, Key: d.Key, Value: d.Value, Type: d.Type}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// All returns the coach's settings decoded by type.
func (s *SettingsService) All(coachID uuid.UUID) (map[string]interface{}, error) {
	var rows []models.CoachSetting
	if err := s.db.Where("coach_id = ?", coachID).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		result[row.Key] = DecodeSetting(row.Type, row.Value)
	}
	return result, nil
}

// Set upserts a key after checking the value parses as its declared type.
func (s *SettingsService) Set(coachID uuid.UUID, key, value, typ string) (*models.CoachSetting, error) {
	if key == "" {
		return nil, validate.Errors{"key": "is required"}
	}
	if typ == "" {
		typ = "string"
	}
	if err := checkSettingValue(typ, value); err != nil {
		return nil, validate.Errors{"value": err.Error()}
	}

	var row models.CoachSetting
	err := s.db.Where("coach_id = ? AND key = ?", coachID, key).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.CoachSetting{CoachID: coachID, Key: key, Value: value, Type: typ}
		if err := s.db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create setting: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		row.Value = value
		row.Type = typ
		if err := s.db.Save(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to update setting: %w", err)
		}
	}
	return &row, nil
}

func (s *SettingsService) Delete(coachID uuid.UUID, key string) error {
	result := s.db.Where("coach_id = ? AND key = ?", coachID, key).Delete(&models.CoachSetting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// Bool reads a boolean setting, returning fallback when missing or malformed.
func (s *SettingsService) Bool(coachID uuid.UUID, key string, fallback bool) bool {
	var row models.CoachSetting
	if err := s.db.Where("coach_id = ? AND key = ?", coachID, key).First(&row).Error; err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(row.Value)
	if err != nil {
		return fallback
	}
	return b
}

// Int reads an integer setting, returning fallback when missing or malformed.
func (s *SettingsService) Int(coachID uuid.UUID, key string, fallback int) int {
	var row models.CoachSetting
	if err := s.db.Where("coach_id = ? AND key = ?", coachID, key).First(&row).Error; err != nil {
		return fallback
	}
	n, err := strconv.Atoi(row.Value)
	if err != nil {
		return fallback
	}
	return n
}

func DecodeSetting(typ, value string) interface{} {
	switch typ {
	case "bool":
		b, _ := strconv.ParseBool(value)
		return b
	case "int":
		n, _ := strconv.Atoi(value)
		return n
	case "json":
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil
		}
		return v
	default:
		return value
	}
}

func checkSettingValue(typ, value string) error {
	switch typ {
	case "string":
		return nil
	case "bool":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("value %q is not a bool", value)
		}
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("value %q is not an int", value)
		}
	case "json":
		if !json.Valid([]byte(value)) {
			return errors.New("value is not valid JSON")
		}
	default:
		return fmt.Errorf("unknown type %q: must be string, bool, int or json", typ)
	}
	return nil
}
