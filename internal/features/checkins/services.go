package checkins

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinScore = 1
	MaxScore = 10
)

var (
	ErrCheckInNotFound = errors.New("check-in not found")
	ErrCheckInExists   = errors.New("a check-in already exists for this date")
	ErrFutureCheckIn   = errors.New("cannot check in for a future date")
)

type CheckInService struct {
	db       *gorm.DB
	hub      realtime.Publisher
	uploader storage.Uploader
}

func NewCheckInService(db *gorm.DB, hub realtime.Publisher, uploader storage.Uploader) *CheckInService {
	return &CheckInService{db: db, hub: hub, uploader: uploader}
}

func validateSubmit(req SubmitCheckInRequest) (time.Time, error) {
	errs := validate.Errors{}
	date, err := features.DateOrToday(req.Date)
	if err != nil {
		errs.Add("date", err.Error())
	}
	validate.OptionalFloatRange(errs, "weight_kg", req.WeightKg, tracking.MinWeightKg, tracking.MaxWeightKg)
	validate.IntRange(errs, "mood", req.Mood, MinScore, MaxScore)
	validate.IntRange(errs, "energy", req.Energy, MinScore, MaxScore)
	validate.IntRange(errs, "sleep", req.Sleep, MinScore, MaxScore)
	validate.IntRange(errs, "stress", req.Stress, MinScore, MaxScore)
	validate.IntRange(errs, "hunger", req.Hunger, MinScore, MaxScore)
	return date, errs.Err()
}

// Submit records the customer's check-in. A weight is also written to the
// weight log.
func (s *CheckInService) Submit(customerID uuid.UUID, req SubmitCheckInRequest) (*CheckIn, error) {
	date, err := validateSubmit(req)
	if err != nil {
		return nil, err
	}
	if date.After(features.Today()) {
		return nil, ErrFutureCheckIn
	}

	checkIn := CheckIn{
		ID:          uuid.New(),
		CustomerID:  customerID,
		CheckInDate: date,
		WeightKg:    req.WeightKg,
		Mood:        req.Mood,
		Energy:      req.Energy,
		Sleep:       req.Sleep,
		Stress:      req.Stress,
		Hunger:      req.Hunger,
		Notes:       req.Notes,
		PhotoURL:    req.PhotoURL,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&CheckIn{}).Scopes(authctx.ForCustomer(customerID)).
			Where("check_in_date = ?", date).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCheckInExists
		}
		if err := tx.Create(&checkIn).Error; err != nil {
			return err
		}
		if req.WeightKg != nil {
			if _, err := tracking.RecordWeight(tx, customerID, date, *req.WeightKg, "check-in"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent submit for the same day loses on the unique index.
		if errors.Is(err, ErrCheckInExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCheckInExists
		}
		return nil, fmt.Errorf("failed to submit check-in: %w", err)
	}

	if s.hub != nil {
		var customer models.Customer
		if s.db.Select("coach_id").First(&customer, "id = ?", customerID).Error == nil {
			s.hub.Publish(customer.CoachID, "checkin.created", checkIn)
		}
	}
	return &checkIn, nil
}

func (s *CheckInService) History(customerID uuid.UUID, limit, offset int) ([]CheckIn, int64, error) {
	var total int64
	s.db.Model(&CheckIn{}).Scopes(authctx.ForCustomer(customerID)).Count(&total)

	var items []CheckIn
	err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Order("check_in_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, total, err
}

func (s *CheckInService) UploadPhoto(ctx context.Context, customerID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	return storage.UploadImage(ctx, s.uploader, fh, "progress", customerID)
}

func (s *CheckInService) ListForCoach(coachID, customerID uuid.UUID, limit, offset int) ([]CheckIn, int64, error) {
	if _, err := authctx.CustomerForCoach(s.db, coachID, customerID); err != nil {
		return nil, 0, err
	}
	return s.History(customerID, limit, offset)
}

// Pending lists unreviewed check-ins across all of the coach's customers,
// oldest first.
func (s *CheckInService) Pending(coachID uuid.UUID, limit int) ([]PendingCheckIn, error) {
	var items []PendingCheckIn
	err := s.db.Table("check_ins").
		Select("check_ins.*, customers.full_name AS customer_name").
		Joins("JOIN customers ON customers.id = check_ins.customer_id AND customers.deleted_at IS NULL").
		Where("customers.coach_id = ? AND check_ins.reviewed_at IS NULL", coachID).
		Order("check_ins.check_in_date ASC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

// Review stores the coach's feedback and marks the check-in reviewed.
func (s *CheckInService) Review(coachID, id uuid.UUID, feedback string) (*CheckIn, error) {
	feedback = strings.TrimSpace(feedback)
	errs := validate.Errors{}
	validate.Required(errs, "feedback", feedback)
	validate.MaxLen(errs, "feedback", feedback, 4000)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var checkIn CheckIn
	err := s.db.Where("customer_id IN (?)", authctx.OwnedCustomers(s.db, coachID)).
		First(&checkIn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckInNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	checkIn.CoachFeedback = feedback
	checkIn.ReviewedAt = &now
	if err := s.db.Model(&checkIn).Updates(map[string]interface{}{
		"coach_feedback": feedback,
		"reviewed_at":    now,
	}).Error; err != nil {
		return nil, err
	}

	if s.hub != nil {
		var customer models.Customer
		if s.db.Select("user_id").First(&customer, "id = ?", checkIn.CustomerID).Error == nil && customer.UserID != nil {
			s.hub.Publish(*customer.UserID, "checkin.reviewed", checkIn)
		}
	}
	return &checkIn, nil
}

// Latest returns the customer's most recent check-in or nil.
func Latest(db *gorm.DB, customerID uuid.UUID) (*CheckIn, error) {
	var checkIn CheckIn
	err := db.Scopes(authctx.ForCustomer(customerID)).Order("check_in_date DESC").First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}
