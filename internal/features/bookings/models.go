package bookings

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow_up"
	TypeCheckIn      = "check_in"
	TypeOther        = "other"

	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

var (
	Types    = []string{TypeConsultation, TypeFollowUp, TypeCheckIn, TypeOther}
	Statuses = []string{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}
)

type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CoachID         uuid.UUID `gorm:"type:uuid;not null;index:idx_booking_coach_start,priority:1" json:"coach_id"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Type            string    `gorm:"size:30;not null;default:'consultation'" json:"type"`
	StartsAt        time.Time `gorm:"not null;index:idx_booking_coach_start,priority:2" json:"starts_at"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	Location        string    `gorm:"size:255" json:"location"`
	Status          string    `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndsAt is the end of the booked interval.
func (b *Booking) EndsAt() time.Time {
	return b.StartsAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// --- DTOs ---

type CreateBookingRequest struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
	Notes           string    `json:"notes"`
}

type UpdateBookingRequest struct {
	Title           *string    `json:"title"`
	Type            *string    `json:"type"`
	StartsAt        *time.Time `json:"starts_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Location        *string    `json:"location"`
	Notes           *string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ListFilter struct {
	From       *time.Time
	To         *time.Time
	Status     string
	CustomerID *uuid.UUID
}

type PortalBookings struct {
	Upcoming []Booking `json:"upcoming"`
	Past     []Booking `json:"past"`
}
