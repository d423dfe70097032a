package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestPublishReachesEveryConnectionOfUser(t *testing.T) {
	h := NewHub()
	coach := uuid.New()
	other := uuid.New()

	laptop := h.Register(coach)
	phone := h.Register(coach)
	stranger := h.Register(other)

	if n := h.Publish(coach, "message.created", map[string]string{"body": "hi"}); n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}

	for _, c := range []*Client{laptop, phone} {
		select {
		case raw := <-c.Messages():
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ev.Type != "message.created" {
				t.Errorf("type = %q", ev.Type)
			}
		default:
			t.Error("expected an event on coach connection")
		}
	}

	select {
	case <-stranger.Messages():
		t.Error("event leaked to another user")
	default:
	}
}

func TestUnregisterClosesChannelOnce(t *testing.T) {
	h := NewHub()
	c := h.Register(uuid.New())
	h.Unregister(c)
	h.Unregister(c)

	if _, ok := <-c.Messages(); ok {
		t.Error("channel should be closed")
	}
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", h.ClientCount())
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub()
	user := uuid.New()
	c := h.Register(user)

	for i := 0; i < sendBuffer; i++ {
		h.Publish(user, "water.logged", i)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("client dropped too early")
	}

	if n := h.Publish(user, "water.logged", "overflow"); n != 0 {
		t.Errorf("delivered = %d, want 0 for full buffer", n)
	}
	if h.ClientCount() != 0 {
		t.Errorf("slow client should be unregistered, ClientCount = %d", h.ClientCount())
	}

	drained := 0
	for range c.Messages() {
		drained++
	}
	if drained != sendBuffer {
		t.Errorf("drained %d buffered events, want %d", drained, sendBuffer)
	}
}
