package messaging

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type senderEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// SenderLimiter is a token bucket per sending user.
type SenderLimiter struct {
	mu      sync.Mutex
	senders map[uuid.UUID]*senderEntry
	r       rate.Limit
	burst   int
	done    chan struct{}
}

func NewSenderLimiter(perSecond float64, burst int) *SenderLimiter {
	return &SenderLimiter{
		senders: make(map[uuid.UUID]*senderEntry),
		r:       rate.Limit(perSecond),
		burst:   burst,
	}
}

// StartCleanup drops senders idle for longer than idle, checking every
// interval until Stop is called.
func (l *SenderLimiter) StartCleanup(interval, idle time.Duration) {
	l.mu.Lock()
	if l.done != nil {
		l.mu.Unlock()
		return
	}
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.prune(idle)
			case <-done:
				return
			}
		}
	}()
}

func (l *SenderLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}

func (l *SenderLimiter) prune(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, e := range l.senders {
		if time.Since(e.seen) > idle {
			delete(l.senders, id)
		}
	}
}

// Allow reports whether sender may send now, consuming a token if so.
func (l *SenderLimiter) Allow(sender uuid.UUID) bool {
	l.mu.Lock()
	e, ok := l.senders[sender]
	if !ok {
		e = &senderEntry{lim: rate.NewLimiter(l.r, l.burst)}
		l.senders[sender] = e
	}
	e.seen = time.Now()
	l.mu.Unlock()
	return e.lim.Allow()
}

func (l *SenderLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.senders)
}
