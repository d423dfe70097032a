package messaging

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_message_unread,priority:1" json:"recipient_id"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ReadAt      *time.Time `gorm:"index:idx_message_unread,priority:2" json:"read_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// Counterparty returns the other participant from userID's point of view.
func (m *Message) Counterparty(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// --- DTOs ---

type SendRequest struct {
	CustomerID uuid.UUID `json:"customer_id"` // coach only; portal messages go to the coach
	Body       string    `json:"body"`
}

type Conversation struct {
	CounterpartyID   uuid.UUID `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
	CustomerID       uuid.UUID `json:"customer_id"`
	LastMessage      Message   `json:"last_message"`
	LastAt           time.Time `json:"last_at"`
	Unread           int       `json:"unread"`
}

type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
