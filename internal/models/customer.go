package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CustomerActive   = "active"
	CustomerPaused   = "paused"
	CustomerArchived = "archived"
)

// Customer is a coaching client owned by one coach. UserID links the
// optional portal account.
type Customer struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CoachID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"coach_id"`
	UserID              *uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	FullName            string         `gorm:"size:255;not null" json:"full_name"`
	Email               string         `gorm:"size:255;not null;index" json:"email"`
	Phone               string         `gorm:"size:50" json:"phone"`
	DateOfBirth         *time.Time     `gorm:"type:date" json:"date_of_birth"`
	Gender              string         `gorm:"size:20" json:"gender"`
	HeightCm            *float64       `json:"height_cm"`
	StartingWeightKg    *float64       `json:"starting_weight_kg"`
	CurrentWeightKg     *float64       `json:"current_weight_kg"`
	TargetWeightKg      *float64       `json:"target_weight_kg"`
	ActivityLevel       string         `gorm:"size:30" json:"activity_level"`
	Goals               datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"goals"`
	DietaryRestrictions datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"dietary_restrictions"`
	Allergies           string         `gorm:"type:text" json:"allergies"`
	MedicalNotes        string         `gorm:"type:text" json:"medical_notes"`
	DailyCalorieTarget  int            `gorm:"default:2000" json:"daily_calorie_target"`
	DailyWaterTargetMl  int            `gorm:"default:2500" json:"daily_water_target_ml"`
	AvatarURL           string         `gorm:"type:text" json:"avatar_url"`
	Status              string         `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
	Coach               User           `gorm:"foreignKey:CoachID" json:"-"`
}
