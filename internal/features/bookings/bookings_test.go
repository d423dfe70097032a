package bookings

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCompleted, false},
		{StatusScheduled, "postponed", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	nine := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		b    time.Time
		bMin int
		want bool
	}{
		{"same slot", nine, 60, true},
		{"starts inside", nine.Add(30 * time.Minute), 60, true},
		{"ends inside", nine.Add(-30 * time.Minute), 45, true},
		{"contains", nine.Add(-time.Hour), 180, true},
		{"back to back after", nine.Add(time.Hour), 30, false},
		{"back to back before", nine.Add(-30 * time.Minute), 30, false},
		{"later", nine.Add(3 * time.Hour), 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(nine, 60, tt.b, tt.bMin); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.bMin, nine, 60); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestValidateBooking(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)

	if err := validateBooking("Intro call", TypeConsultation, start, 60); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	err := validateBooking(" ", "lunch", time.Time{}, 10)
	ve, ok := validate.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"title", "type", "starts_at", "duration_minutes"} {
		if _, ok := ve[field]; !ok {
			t.Errorf("missing error for %s", field)
		}
	}

	if err := validateBooking("Long", TypeOther, start, MaxDuration+1); err == nil {
		t.Error("duration above max accepted")
	}
}

func TestEndsAt(t *testing.T) {
	b := Booking{StartsAt: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), DurationMinutes: 45}
	if got := b.EndsAt(); !got.Equal(time.Date(2024, 6, 3, 9, 45, 0, 0, time.UTC)) {
		t.Errorf("EndsAt = %v", got)
	}
}

func TestConflicts(t *testing.T) {
	nine := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	existing := Booking{ID: uuid.New(), StartsAt: nine, DurationMinutes: 60, Status: StatusScheduled}
	cancelled := Booking{ID: uuid.New(), StartsAt: nine.Add(2 * time.Hour), DurationMinutes: 60, Status: StatusCancelled}
	list := []Booking{existing, cancelled}

	tests := []struct {
		name     string
		exclude  uuid.UUID
		start    time.Time
		duration int
		want     bool
	}{
		{"overlapping slot", uuid.Nil, nine.Add(30 * time.Minute), 30, true},
		{"ends when next starts", uuid.Nil, nine.Add(-30 * time.Minute), 30, false},
		{"starts when previous ends", uuid.Nil, existing.EndsAt(), 45, false},
		{"rescheduling itself", existing.ID, nine.Add(15 * time.Minute), 60, false},
		{"cancelled slot is free", uuid.Nil, cancelled.StartsAt, 60, false},
		{"spans the whole booking", uuid.Nil, nine.Add(-time.Hour), 180, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Conflicts(list, tt.exclude, tt.start, tt.duration); got != tt.want {
				t.Errorf("Conflicts = %v, want %v", got, tt.want)
			}
		})
	}
}
