// Package realtime is the change feed clients subscribe to. It carries
// notifications only; clients refetch the affected rows.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const sendBuffer = 16

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coachdesk_realtime_clients",
		Help: "Connected realtime websocket clients.",
	})
	publishedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coachdesk_realtime_events_total",
		Help: "Realtime events fanned out, by type.",
	}, []string{"type"})
)

// Event is the envelope written to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// Publisher is what services depend on to announce inserts and updates.
type Publisher interface {
	Publish(userID uuid.UUID, eventType string, data interface{}) int
}

type Client struct {
	UserID uuid.UUID
	send   chan []byte
}

// Messages yields encoded events until the client is unregistered.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{})}
}

func (h *Hub) Register(userID uuid.UUID) *Client {
	c := &Client{UserID: userID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()
	connectedClients.Inc()
	return c
}

// Unregister removes the client and closes its channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.UserID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
	connectedClients.Dec()
}

// Publish sends an event to every connection of userID and returns how many
// received it. Clients whose buffer is full are dropped.
func (h *Hub) Publish(userID uuid.UUID, eventType string, data interface{}) int {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		slog.Error("realtime event encode failed", "type", eventType, "error", err)
		return 0
	}

	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow realtime client", "user_id", c.UserID.String())
		h.Unregister(c)
	}

	publishedEvents.WithLabelValues(eventType).Inc()
	return delivered
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
