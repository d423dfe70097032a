package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoachSetting stores per-coach configuration values.
type CoachSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CoachID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_coach_setting_key,priority:1" json:"coach_id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_coach_setting_key,priority:2" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Type      string    `gorm:"size:20;default:'string'" json:"type"` // string, bool, int, json
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (cs *CoachSetting) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}

func (CoachSetting) TableName() string {
	return "coach_settings"
}
