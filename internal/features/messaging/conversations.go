package messaging

import (
	"sort"

	"github.com/google/uuid"
)

// GroupConversations folds a flat list of userID's messages into one
// conversation per counterparty, newest conversation first.
func GroupConversations(userID uuid.UUID, msgs []Message) []Conversation {
	byPeer := make(map[uuid.UUID]*Conversation)
	for _, m := range msgs {
		peer := m.Counterparty(userID)
		conv, ok := byPeer[peer]
		if !ok {
			conv = &Conversation{CounterpartyID: peer, CustomerID: m.CustomerID}
			byPeer[peer] = conv
		}
		if conv.LastAt.IsZero() || m.CreatedAt.After(conv.LastAt) {
			conv.LastMessage = m
			conv.LastAt = m.CreatedAt
		}
		if m.RecipientID == userID && m.ReadAt == nil {
			conv.Unread++
		}
	}

	out := make([]Conversation, 0, len(byPeer))
	for _, conv := range byPeer {
		out = append(out, *conv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastAt.Equal(out[j].LastAt) {
			return out[i].CounterpartyID.String() < out[j].CounterpartyID.String()
		}
		return out[i].LastAt.After(out[j].LastAt)
	})
	return out
}

// Chronological reverses a newest-first page into reading order.
func Chronological(msgs []Message) []Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
