package core

import "aulachat/internal/store"

const eventBuffer = 32

// Client is a live transport session as seen by the core layer. Identity
// fields are stamped once at connect time from the validated auth token and
// trusted afterwards.
type Client struct {
	ID     string // ephemeral connection id
	UserID int64
	Name   string
	Role   store.Role
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string, userID int64, name string, role store.Role) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Name:   name,
		Role:   role,
		Events: make(chan *Event, eventBuffer),
	}
}

// deliver hands an event to the client without blocking. A slow consumer is
// dropped rather than stalling delivery to the rest of the room.
func (c *Client) deliver(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
