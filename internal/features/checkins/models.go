package checkins

import (
	"time"

	"github.com/google/uuid"
)

type CheckIn struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_check_in_day,priority:1" json:"customer_id"`
	CheckInDate   time.Time  `gorm:"type:date;not null;uniqueIndex:idx_check_in_day,priority:2" json:"check_in_date"`
	WeightKg      *float64   `json:"weight_kg"`
	Mood          int        `gorm:"not null" json:"mood"`
	Energy        int        `gorm:"not null" json:"energy"`
	Sleep         int        `gorm:"not null" json:"sleep"`
	Stress        int        `gorm:"not null" json:"stress"`
	Hunger        int        `gorm:"not null" json:"hunger"`
	Notes         string     `gorm:"type:text" json:"notes"`
	PhotoURL      string     `gorm:"type:text" json:"photo_url"`
	CoachFeedback string     `gorm:"type:text" json:"coach_feedback"`
	ReviewedAt    *time.Time `gorm:"index" json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// --- DTOs ---

type SubmitCheckInRequest struct {
	Date     string   `json:"date"`
	WeightKg *float64 `json:"weight_kg"`
	Mood     int      `json:"mood"`
	Energy   int      `json:"energy"`
	Sleep    int      `json:"sleep"`
	Stress   int      `json:"stress"`
	Hunger   int      `json:"hunger"`
	Notes    string   `json:"notes"`
	PhotoURL string   `json:"photo_url"`
}

type ReviewRequest struct {
	Feedback string `json:"feedback"`
}

// PendingCheckIn is an unreviewed check-in with its customer's name.
type PendingCheckIn struct {
	CheckIn
	CustomerName string `json:"customer_name"`
}
