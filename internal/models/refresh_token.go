package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is the stored half of a rotating refresh token. Only the
// SHA-256 of the raw value is kept.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false;index" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the token may still be exchanged.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// RevokeSessions marks every outstanding token of the given users revoked.
func RevokeSessions(tx *gorm.DB, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return tx.Model(&RefreshToken{}).
		Where("user_id IN ? AND revoked = false", userIDs).
		Update("revoked", true).Error
}
