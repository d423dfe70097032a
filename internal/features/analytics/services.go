package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/bookings"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/habits"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/messaging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MaxProgressDays = 365
	maxProperties   = 8 * 1024
)

var (
	ErrInvalidEventType   = errors.New("event_type must be lowercase letters, digits, '_' or '.', 2-64 characters")
	ErrPropertiesTooLarge = errors.New("properties must be at most 8 KB of JSON")
)

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Track appends one event. customerID is set for portal callers.
func (s *AnalyticsService) Track(userID uuid.UUID, customerID *uuid.UUID, req TrackRequest) (*Event, error) {
	if !ValidEventType(req.EventType) {
		return nil, ErrInvalidEventType
	}
	if req.Properties == nil {
		req.Properties = map[string]interface{}{}
	}
	props, err := json.Marshal(req.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	if len(props) > maxProperties {
		return nil, ErrPropertiesTooLarge
	}

	occurred := time.Now()
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() && req.OccurredAt.Before(occurred) {
		occurred = *req.OccurredAt
	}

	event := Event{
		ID:         uuid.New(),
		UserID:     userID,
		CustomerID: customerID,
		EventType:  req.EventType,
		Properties: datatypes.JSON(props),
		OccurredAt: occurred.UTC(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to track event: %w", err)
	}
	return &event, nil
}

func (s *AnalyticsService) Dashboard(coachID uuid.UUID) (*Dashboard, error) {
	now := time.Now()
	today := features.Today()
	owned := authctx.OwnedCustomers(s.db, coachID)
	d := &Dashboard{CustomersByStatus: map[string]int64{}, GeneratedAt: now.UTC()}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Customer{}).Scopes(authctx.ForCoach(coachID)).
		Select("status, count(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		d.CustomersByStatus[row.Status] = row.Count
		d.TotalCustomers += row.Count
	}

	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&d.NewCustomers30d, s.db.Model(&models.Customer{}).Scopes(authctx.ForCoach(coachID)).
			Where("created_at >= ?", now.AddDate(0, 0, -30))},
		{&d.UpcomingBookings7d, s.db.Model(&bookings.Booking{}).Scopes(authctx.ForCoach(coachID)).
			Where("status = ? AND starts_at BETWEEN ? AND ?", bookings.StatusScheduled, now, now.AddDate(0, 0, 7))},
		{&d.CompletedBookings30d, s.db.Model(&bookings.Booking{}).Scopes(authctx.ForCoach(coachID)).
			Where("status = ? AND starts_at >= ?", bookings.StatusCompleted, now.AddDate(0, 0, -30))},
		{&d.CheckIns7d, s.db.Model(&checkins.CheckIn{}).
			Where("customer_id IN (?) AND check_in_date >= ?", owned, today.AddDate(0, 0, -6))},
		{&d.PendingReviews, s.db.Model(&checkins.CheckIn{}).
			Where("customer_id IN (?) AND reviewed_at IS NULL", owned)},
		{&d.UnreadMessages, s.db.Model(&messaging.Message{}).
			Where("recipient_id = ? AND read_at IS NULL", coachID)},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var active []models.Customer
	if err := s.db.Scopes(authctx.ForCoach(coachID)).
		Select("id", "starting_weight_kg", "current_weight_kg").
		Where("status = ?", models.CustomerActive).
		Find(&active).Error; err != nil {
		return nil, err
	}
	pairs := make([]weightPair, len(active))
	ids := make([]uuid.UUID, len(active))
	for i, c := range active {
		pairs[i] = weightPair{Starting: c.StartingWeightKg, Current: c.CurrentWeightKg}
		ids[i] = c.ID
	}
	d.AvgWeightChangeKg = averageWeightChange(pairs)

	avg, err := s.averageCompliance(ids, today.AddDate(0, 0, -6), today)
	if err != nil {
		return nil, err
	}
	d.AvgHabitCompliance7d = avg
	return d, nil
}

// averageCompliance is the mean overall compliance of the customers that
// have at least one active habit.
func (s *AnalyticsService) averageCompliance(customerIDs []uuid.UUID, from, to time.Time) (float64, error) {
	if len(customerIDs) == 0 {
		return 0, nil
	}
	var hs []habits.Habit
	if err := s.db.Where("customer_id IN ? AND active = ?", customerIDs, true).Find(&hs).Error; err != nil {
		return 0, err
	}
	var logs []habits.HabitLog
	if err := s.db.Where("customer_id IN ? AND log_date BETWEEN ? AND ? AND completed = ?", customerIDs, from, to, true).
		Find(&logs).Error; err != nil {
		return 0, err
	}

	habitsBy := map[uuid.UUID][]habits.Habit{}
	for _, h := range hs {
		habitsBy[h.CustomerID] = append(habitsBy[h.CustomerID], h)
	}
	logsBy := map[uuid.UUID][]habits.HabitLog{}
	for _, l := range logs {
		logsBy[l.CustomerID] = append(logsBy[l.CustomerID], l)
	}

	var sum float64
	for id, list := range habitsBy {
		sum += habits.Compliance(list, logsBy[id], from, to, to).Overall
	}
	if len(habitsBy) == 0 {
		return 0, nil
	}
	return round1(sum / float64(len(habitsBy))), nil
}

// CustomerProgress gathers the trend data for one customer over the last
// days days.
func (s *AnalyticsService) CustomerProgress(customerID uuid.UUID, days int) (*Progress, error) {
	if days <= 0 {
		days = 30
	}
	if days > MaxProgressDays {
		days = MaxProgressDays
	}
	to := features.Today()
	from := to.AddDate(0, 0, -(days - 1))

	track := tracking.NewTrackingService(s.db)
	weights, err := track.WeightLogs(customerID, from, to)
	if err != nil {
		return nil, err
	}
	foods, err := track.FoodLogs(customerID, from, to)
	if err != nil {
		return nil, err
	}
	waters, err := track.WaterLogs(customerID, from, to)
	if err != nil {
		return nil, err
	}

	var cis []checkins.CheckIn
	if err := s.db.Scopes(authctx.ForCustomer(customerID)).
		Where("check_in_date BETWEEN ? AND ?", from, to).
		Find(&cis).Error; err != nil {
		return nil, err
	}

	report, err := habits.ComplianceFor(s.db, customerID, from, to)
	if err != nil {
		return nil, err
	}

	return &Progress{
		CustomerID: customerID,
		From:       from.Format(dayKey),
		To:         to.Format(dayKey),
		Weight:     WeightSeries(weights),
		Scores:     AverageScores(cis),
		Intake:     DailyIntake(from, to, foods, waters),
		Habits:     report,
	}, nil
}

func (s *AnalyticsService) CustomerProgressForCoach(coachID, customerID uuid.UUID, days int) (*Progress, error) {
	if _, err := authctx.CustomerForCoach(s.db, coachID, customerID); err != nil {
		return nil, err
	}
	return s.CustomerProgress(customerID, days)
}

// EventCounts counts events by type raised by the coach or their customers.
func (s *AnalyticsService) EventCounts(coachID uuid.UUID, days int) ([]EventCount, error) {
	if days <= 0 || days > MaxProgressDays {
		days = 30
	}
	var out []EventCount
	err := s.db.Model(&Event{}).
		Select("event_type, count(*) AS count").
		Where("(user_id = ? OR customer_id IN (?)) AND occurred_at >= ?",
			coachID, authctx.OwnedCustomers(s.db, coachID), time.Now().AddDate(0, 0, -days)).
		Group("event_type").
		Order("count DESC, event_type ASC").
		Scan(&out).Error
	if out == nil {
		out = []EventCount{}
	}
	return out, err
}
