package habits

import (
	"time"

	"github.com/google/uuid"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

type Habit struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CoachID       uuid.UUID `gorm:"type:uuid;not null;index" json:"coach_id"`
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Frequency     string    `gorm:"size:20;not null;default:'daily'" json:"frequency"`
	TargetPerWeek int       `gorm:"not null;default:7" json:"target_per_week"`
	Active        bool      `gorm:"default:true" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type HabitLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HabitID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_habit_log_day,priority:1" json:"habit_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	LogDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_habit_log_day,priority:2" json:"log_date"`
	Completed  bool      `gorm:"not null" json:"completed"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateHabitRequest struct {
	CustomerID    uuid.UUID `json:"customer_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Frequency     string    `json:"frequency"`
	TargetPerWeek int       `json:"target_per_week"`
}

type UpdateHabitRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Frequency     *string `json:"frequency"`
	TargetPerWeek *int    `json:"target_per_week"`
	Active        *bool   `json:"active"`
}

type LogHabitRequest struct {
	Date      string `json:"date"`
	Completed *bool  `json:"completed"`
	Note      string `json:"note"`
}

type HabitCompliance struct {
	HabitID       uuid.UUID `json:"habit_id"`
	Name          string    `json:"name"`
	Completed     int       `json:"completed"`
	Expected      int       `json:"expected"`
	Percent       float64   `json:"percent"`
	CurrentStreak int       `json:"current_streak"`
}

type ComplianceReport struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Overall float64           `json:"overall"`
	Habits  []HabitCompliance `json:"habits"`
}
