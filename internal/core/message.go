package core

import (
	"time"

	"aulachat/internal/store"
)

// Message is the domain model for a chat message. ID and CreatedAt are
// assigned by the store at persist time; until then they are zero.
type Message struct {
	ID         int64
	RoomID     int64
	SenderID   int64
	SenderName string
	SenderRole store.Role
	Body       string
	CreatedAt  time.Time
}

func messageFromStore(m *store.Message) Message {
	return Message{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}
