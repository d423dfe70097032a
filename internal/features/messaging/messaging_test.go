package messaging

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
)

func TestGroupConversations(t *testing.T) {
	me, alice, bob := uuid.New(), uuid.New(), uuid.New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	read := base

	msgs := []Message{
		{SenderID: alice, RecipientID: me, Body: "hi", CreatedAt: base},
		{SenderID: me, RecipientID: alice, Body: "hello", CreatedAt: base.Add(time.Minute)},
		{SenderID: alice, RecipientID: me, Body: "question", CreatedAt: base.Add(2 * time.Minute)},
		{SenderID: alice, RecipientID: me, Body: "seen", CreatedAt: base.Add(-time.Hour), ReadAt: &read},
		{SenderID: bob, RecipientID: me, Body: "later", CreatedAt: base.Add(time.Hour)},
	}

	convs := GroupConversations(me, msgs)
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}

	if convs[0].CounterpartyID != bob {
		t.Errorf("newest conversation should be bob's")
	}
	if convs[0].Unread != 1 || convs[0].LastMessage.Body != "later" {
		t.Errorf("bob conv = %+v", convs[0])
	}

	a := convs[1]
	if a.CounterpartyID != alice {
		t.Fatalf("second conversation should be alice's")
	}
	if a.LastMessage.Body != "question" || !a.LastAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("alice last = %q at %v", a.LastMessage.Body, a.LastAt)
	}
	// Own messages and already read ones are not unread.
	if a.Unread != 2 {
		t.Errorf("alice unread = %d, want 2", a.Unread)
	}
}

func TestGroupConversationsEmpty(t *testing.T) {
	if convs := GroupConversations(uuid.New(), nil); convs == nil || len(convs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", convs)
	}
}

func TestChronological(t *testing.T) {
	msgs := []Message{{Body: "3"}, {Body: "2"}, {Body: "1"}}
	got := Chronological(msgs)
	if got[0].Body != "1" || got[2].Body != "3" {
		t.Errorf("order = %s %s %s", got[0].Body, got[1].Body, got[2].Body)
	}
}

func TestValidateBody(t *testing.T) {
	if body, err := validateBody("  hey coach  "); err != nil || body != "hey coach" {
		t.Errorf("validateBody = %q, %v", body, err)
	}
	if _, err := validateBody("   "); err == nil {
		t.Error("blank body accepted")
	}
	_, err := validateBody(strings.Repeat("a", MaxBodyLength+1))
	if ve, ok := validate.As(err); !ok || ve["body"] == "" {
		t.Errorf("overlong body: %v", err)
	}
	if _, err := validateBody(strings.Repeat("é", MaxBodyLength)); err != nil {
		t.Errorf("limit counts characters, not bytes: %v", err)
	}
}

func TestSenderLimiterBurst(t *testing.T) {
	l := NewSenderLimiter(1, 5)
	a, b := uuid.New(), uuid.New()

	for i := 0; i < 5; i++ {
		if !l.Allow(a) {
			t.Fatalf("send %d within burst was limited", i+1)
		}
	}
	if l.Allow(a) {
		t.Error("sixth immediate send should be limited")
	}
	if !l.Allow(b) {
		t.Error("limits must be per sender")
	}
}

func TestSenderLimiterPrune(t *testing.T) {
	l := NewSenderLimiter(1, 1)
	l.Allow(uuid.New())
	l.Allow(uuid.New())
	if l.tracked() != 2 {
		t.Fatalf("tracked = %d", l.tracked())
	}
	l.prune(-time.Second)
	if l.tracked() != 0 {
		t.Errorf("prune left %d senders", l.tracked())
	}
}

func TestServiceRateLimitsBeforeDB(t *testing.T) {
	l := NewSenderLimiter(1, 1)
	svc := NewMessageService(nil, nil, l)
	sender := uuid.New()
	l.Allow(sender)

	if _, err := svc.Send(sender, uuid.New(), "hello"); err != ErrRateLimited {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
	if _, err := svc.Send(sender, sender, "hello"); err != ErrNotPaired {
		t.Errorf("self send err = %v, want ErrNotPaired", err)
	}
}
