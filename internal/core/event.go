package core

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventDelivered carries a persisted chat message to a room member.
	EventDelivered EventKind = iota
	// EventUserJoined notifies room members about a user joining.
	EventUserJoined
	// EventUserLeft notifies room members about a user leaving.
	EventUserLeft
	// EventHistory delivers the room backlog to a connection upon joining.
	EventHistory
	// EventError notifies a connection about a domain error.
	EventError
)

// Event is sent to connections to describe what happened in the system.
type Event struct {
	Kind     EventKind
	RoomID   int64
	User     string
	Message  Message
	Messages []Message // for EventHistory
	Error    *Error
}
