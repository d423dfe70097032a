package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const (
	MaxBodyLength = 4000
	inboxScan     = 1000
)

const (
	EventMessageCreated = "message.created"
	EventMessageRead    = "message.read"
)

var (
	ErrNotPaired       = errors.New("messages can only be sent between a coach and their customer")
	ErrNoPortalAccount = errors.New("customer has no portal account")
	ErrRateLimited     = errors.New("sending too fast, try again shortly")
)

var messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coachdesk_messages_sent_total",
	Help: "Messages stored, by sender role.",
}, []string{"role"})

type MessageService struct {
	db      *gorm.DB
	hub     realtime.Publisher
	limiter *SenderLimiter
}

func NewMessageService(db *gorm.DB, hub realtime.Publisher, limiter *SenderLimiter) *MessageService {
	return &MessageService{db: db, hub: hub, limiter: limiter}
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	errs := validate.Errors{}
	validate.Required(errs, "body", body)
	validate.MaxLen(errs, "body", body, MaxBodyLength)
	return body, errs.Err()
}

// pair finds the customer record linking sender and recipient, in either
// direction.
func (s *MessageService) pair(senderID, recipientID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where(
		"(coach_id = ? AND user_id = ?) OR (coach_id = ? AND user_id = ?)",
		senderID, recipientID, recipientID, senderID,
	).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotPaired
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Send stores a message and notifies both parties.
func (s *MessageService) Send(senderID, recipientID uuid.UUID, body string) (*Message, error) {
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}
	if senderID == recipientID {
		return nil, ErrNotPaired
	}
	if s.limiter != nil && !s.limiter.Allow(senderID) {
		return nil, ErrRateLimited
	}

	customer, err := s.pair(senderID, recipientID)
	if err != nil {
		return nil, err
	}

	msg := Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		CustomerID:  customer.ID,
		Body:        body,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	role := models.RoleCustomer
	if customer.CoachID == senderID {
		role = models.RoleAdmin
	}
	messagesSent.WithLabelValues(role).Inc()

	if s.hub != nil {
		s.hub.Publish(recipientID, EventMessageCreated, msg)
		s.hub.Publish(senderID, EventMessageCreated, msg)
	}
	return &msg, nil
}

// SendToCustomer sends from a coach to the portal account of one of their
// customers.
func (s *MessageService) SendToCustomer(coachID, customerID uuid.UUID, body string) (*Message, error) {
	customer, err := authctx.CustomerForCoach(s.db, coachID, customerID)
	if err != nil {
		return nil, err
	}
	if customer.UserID == nil {
		return nil, ErrNoPortalAccount
	}
	return s.Send(coachID, *customer.UserID, body)
}

// SendToCoach sends from a portal customer to their coach.
func (s *MessageService) SendToCoach(userID, customerID uuid.UUID, body string) (*Message, error) {
	var customer models.Customer
	if err := s.db.Select("coach_id").First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, authctx.ErrCustomerNotFound
	}
	return s.Send(userID, customer.CoachID, body)
}

func (s *MessageService) Inbox(userID uuid.UUID) ([]Conversation, error) {
	var msgs []Message
	err := s.db.Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(inboxScan).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	convs := GroupConversations(userID, msgs)
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]uuid.UUID, len(convs))
	for i, c := range convs {
		ids[i] = c.CounterpartyID
	}
	var users []models.User
	if err := s.db.Select("id", "full_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	for i := range convs {
		convs[i].CounterpartyName = names[convs[i].CounterpartyID]
	}
	return convs, nil
}

// Thread returns up to limit messages between two users older than before,
// oldest first.
func (s *MessageService) Thread(userID, peerID uuid.UUID, limit int, before *time.Time) ([]Message, error) {
	q := s.db.Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		userID, peerID, peerID, userID,
	)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}

	var msgs []Message
	if err := q.Order("created_at DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	return Chronological(msgs), nil
}

// MarkRead marks everything peerID sent to userID as read.
func (s *MessageService) MarkRead(userID, peerID uuid.UUID) (int64, error) {
	now := time.Now()
	result := s.db.Model(&Message{}).
		Where("recipient_id = ? AND sender_id = ? AND read_at IS NULL", userID, peerID).
		Update("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 && s.hub != nil {
		evt := map[string]interface{}{"reader_id": userID, "peer_id": peerID, "read_at": now}
		s.hub.Publish(peerID, EventMessageRead, evt)
		s.hub.Publish(userID, EventMessageRead, evt)
	}
	return result.RowsAffected, nil
}

func (s *MessageService) UnreadCount(userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.Model(&Message{}).Where("recipient_id = ? AND read_at IS NULL", userID).Count(&n).Error
	return n, err
}
