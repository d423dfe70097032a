package analytics

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/habits"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Event struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID *uuid.UUID     `gorm:"type:uuid;index" json:"customer_id"`
	EventType  string         `gorm:"size:64;not null;index" json:"event_type"`
	Properties datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"properties"`
	OccurredAt time.Time      `gorm:"not null;index" json:"occurred_at"`
}

func (Event) TableName() string {
	return "analytics_events"
}

// --- DTOs ---

type TrackRequest struct {
	EventType  string                 `json:"event_type"`
	Properties map[string]interface{} `json:"properties"`
	OccurredAt *time.Time             `json:"occurred_at"`
}

type Dashboard struct {
	CustomersByStatus    map[string]int64 `json:"customers_by_status"`
	TotalCustomers       int64            `json:"total_customers"`
	NewCustomers30d      int64            `json:"new_customers_30d"`
	UpcomingBookings7d   int64            `json:"upcoming_bookings_7d"`
	CompletedBookings30d int64            `json:"completed_bookings_30d"`
	CheckIns7d           int64            `json:"check_ins_7d"`
	PendingReviews       int64            `json:"pending_reviews"`
	AvgHabitCompliance7d float64          `json:"avg_habit_compliance_7d"`
	UnreadMessages       int64            `json:"unread_messages"`
	AvgWeightChangeKg    *float64         `json:"avg_weight_change_kg"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

type DayIntake struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	WaterMl  int    `json:"water_ml"`
}

type ScoreAverages struct {
	Count  int     `json:"count"`
	Mood   float64 `json:"mood"`
	Energy float64 `json:"energy"`
	Sleep  float64 `json:"sleep"`
	Stress float64 `json:"stress"`
	Hunger float64 `json:"hunger"`
}

type Progress struct {
	CustomerID uuid.UUID               `json:"customer_id"`
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Weight     []WeightPoint           `json:"weight"`
	Scores     ScoreAverages           `json:"scores"`
	Intake     []DayIntake             `json:"intake"`
	Habits     habits.ComplianceReport `json:"habits"`
}

type EventCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}
