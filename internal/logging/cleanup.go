package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"gorm.io/gorm"
)

const RetentionDays = 30

// StartCleanup runs a daily goroutine that prunes system_logs past retention.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := Prune(db, RetentionDays)
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}

// Prune deletes system logs older than the given number of days.
func Prune(db *gorm.DB, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
