// Package notify delivers transactional email to coaches and customers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string
	From    string // falls back to the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// NewSender picks the provider named by EMAIL_PROVIDER.
func NewSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	switch cfg.EmailProvider {
	case "", "noop":
		return NewNoopSender(), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("EMAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
		return NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), nil
	case "ses":
		return NewSESSender(ctx, cfg.SESRegion, cfg.EmailFrom)
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

// SendAsync fires the email in the background. Delivery failures are logged
// and never reach the caller's request.
func SendAsync(sender Sender, req SendRequest) {
	if sender == nil || len(req.To) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := sender.Send(ctx, req); err != nil {
			slog.Error("email delivery failed", "to", req.To, "subject", req.Subject, "error", err)
		}
	}()
}
