package bookings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/notify"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinDuration = 15
	MaxDuration = 480
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingConflict   = errors.New("booking overlaps another scheduled booking")
	ErrInvalidTransition = errors.New("booking status cannot change from its current state")
)

type BookingService struct {
	db       *gorm.DB
	mailer   notify.Sender
	settings *services.SettingsService
}

func NewBookingService(db *gorm.DB, mailer notify.Sender, settings *services.SettingsService) *BookingService {
	return &BookingService{db: db, mailer: mailer, settings: settings}
}

// CanTransition reports whether a booking may move from one status to another.
// Only scheduled bookings change state.
func CanTransition(from, to string) bool {
	if from != StatusScheduled {
		return false
	}
	switch to {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Overlaps reports whether two half-open intervals [start, start+dur) intersect.
func Overlaps(aStart time.Time, aMinutes int, bStart time.Time, bMinutes int) bool {
	aEnd := aStart.Add(time.Duration(aMinutes) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMinutes) * time.Minute)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func validateBooking(title, typ string, startsAt time.Time, duration int) error {
	errs := validate.Errors{}
	validate.Required(errs, "title", title)
	validate.MaxLen(errs, "title", title, 255)
	validate.OneOf(errs, "type", typ, Types...)
	if startsAt.IsZero() {
		errs.Add("starts_at", "is required")
	}
	validate.IntRange(errs, "duration_minutes", duration, MinDuration, MaxDuration)
	return errs.Err()
}

func (s *BookingService) Create(coachID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	if req.Type == "" {
		req.Type = TypeConsultation
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = 60
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateBooking(req.Title, req.Type, req.StartsAt, req.DurationMinutes); err != nil {
		return nil, err
	}

	customer, err := authctx.CustomerForCoach(s.db, coachID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflict(coachID, uuid.Nil, req.StartsAt, req.DurationMinutes); err != nil {
		return nil, err
	}

	booking := Booking{
		ID:              uuid.New(),
		CoachID:         coachID,
		CustomerID:      customer.ID,
		Title:           req.Title,
		Type:            req.Type,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Status:          StatusScheduled,
		Notes:           req.Notes,
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.sendConfirmation(coachID, customer, &booking)
	return &booking, nil
}

// checkConflict loads the coach's scheduled bookings that could touch
// [startsAt, startsAt+duration) and rejects the slot if any overlaps.
// exclude skips the booking being rescheduled.
func (s *BookingService) checkConflict(coachID, exclude uuid.UUID, startsAt time.Time, duration int) error {
	candidate := Booking{StartsAt: startsAt, DurationMinutes: duration}
	windowStart := startsAt.Add(-MaxDuration * time.Minute)

	var nearby []Booking
	err := s.db.Scopes(authctx.ForCoach(coachID)).
		Where("status = ?", StatusScheduled).
		Where("starts_at < ? AND starts_at > ?", candidate.EndsAt(), windowStart).
		Find(&nearby).Error
	if err != nil {
		return fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if Conflicts(nearby, exclude, startsAt, duration) {
		return ErrBookingConflict
	}
	return nil
}

// Conflicts reports whether a slot overlaps any scheduled booking in list
// other than exclude. Back-to-back slots do not conflict.
func Conflicts(list []Booking, exclude uuid.UUID, startsAt time.Time, duration int) bool {
	for _, b := range list {
		if b.ID == exclude || b.Status != StatusScheduled {
			continue
		}
		if Overlaps(startsAt, duration, b.StartsAt, b.DurationMinutes) {
			return true
		}
	}
	return false
}

func (s *BookingService) sendConfirmation(coachID uuid.UUID, customer *models.Customer, b *Booking) {
	if s.mailer == nil || customer.Email == "" {
		return
	}
	if s.settings != nil && !s.settings.Bool(coachID, services.SettingSendBookingEmails, true) {
		return
	}

	var coach models.User
	s.db.Select("full_name").First(&coach, "id = ?", coachID)

	html, err := notify.Render(notify.Email{
		Title:     b.Title,
		Meta:      fmt.Sprintf("%s · %d minutes · %s", b.StartsAt.Format("Mon 2 Jan 2006 15:04 MST"), b.DurationMinutes, b.Location),
		BodyMD:    fmt.Sprintf("Hi %s, your %s is booked.\n\n%s", customer.FullName, strings.ReplaceAll(b.Type, "_", " "), b.Notes),
		CoachName: coach.FullName,
	})
	if err != nil {
		return
	}
	notify.SendAsync(s.mailer, notify.SendRequest{
		To:      []string{customer.Email},
		Subject: "Booking confirmed: " + b.Title,
		HTML:    html,
	})
}

func (s *BookingService) List(coachID uuid.UUID, f ListFilter) ([]Booking, error) {
	q := s.db.Scopes(authctx.ForCoach(coachID))
	if f.From != nil {
		q = q.Where("starts_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("starts_at < ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}

	var bookings []Booking
	err := q.Order("starts_at ASC").Find(&bookings).Error
	return bookings, err
}

// Upcoming returns the next n scheduled bookings from now.
func (s *BookingService) Upcoming(coachID uuid.UUID, n int) ([]Booking, error) {
	if n <= 0 || n > 50 {
		n = 5
	}
	var bookings []Booking
	err := s.db.Scopes(authctx.ForCoach(coachID)).
		Where("status = ? AND starts_at >= ?", StatusScheduled, time.Now()).
		Order("starts_at ASC").
		Limit(n).
		Find(&bookings).Error
	return bookings, err
}

func (s *BookingService) Get(coachID, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := s.db.Scopes(authctx.ForCoach(coachID)).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *BookingService) Update(coachID, id uuid.UUID, req UpdateBookingRequest) (*Booking, error) {
	booking, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}

	rescheduled := false
	if req.Title != nil {
		booking.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		booking.Type = *req.Type
	}
	if req.StartsAt != nil {
		booking.StartsAt = req.StartsAt.UTC()
		rescheduled = true
	}
	if req.DurationMinutes != nil {
		booking.DurationMinutes = *req.DurationMinutes
		rescheduled = true
	}
	if req.Location != nil {
		booking.Location = *req.Location
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}

	if err := validateBooking(booking.Title, booking.Type, booking.StartsAt, booking.DurationMinutes); err != nil {
		return nil, err
	}
	if rescheduled && booking.Status == StatusScheduled {
		if err := s.checkConflict(coachID, booking.ID, booking.StartsAt, booking.DurationMinutes); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) UpdateStatus(coachID, id uuid.UUID, status string) (*Booking, error) {
	errs := validate.Errors{}
	validate.OneOf(errs, "status", status, Statuses...)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	booking, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(booking.Status, status) {
		return nil, ErrInvalidTransition
	}

	booking.Status = status
	if err := s.db.Model(booking).Update("status", status).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) Delete(coachID, id uuid.UUID) error {
	result := s.db.Scopes(authctx.ForCoach(coachID)).Where("id = ?", id).Delete(&Booking{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ForCustomer returns a portal customer's bookings split around now.
func (s *BookingService) ForCustomer(customerID uuid.UUID) (*PortalBookings, error) {
	now := time.Now()
	out := &PortalBookings{Upcoming: []Booking{}, Past: []Booking{}}

	if err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("starts_at >= ?", now).
		Order("starts_at ASC").
		Find(&out.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("starts_at < ?", now).
		Order("starts_at DESC").
		Limit(50).
		Find(&out.Past).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NextForCustomer returns the customer's next scheduled booking, if any.
func NextForCustomer(db *gorm.DB, customerID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := db.Scopes(authctx.ForCustomer(customerID)).
		Where("status = ? AND starts_at >= ?", StatusScheduled, time.Now()).
		Order("starts_at ASC").
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
