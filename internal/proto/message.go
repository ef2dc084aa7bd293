package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin  = "join"
	InboundTypeLeave = "leave"
	InboundTypeMsg   = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMessage    = "message"
	EventNameUserJoined = "user_joined"
	EventNameUserLeft   = "user_left"
	EventNameHistory    = "history"
)

// JoinData requests to join or leave a specific room.
type JoinData struct {
	RoomID int64 `json:"room_id"`
}

// MsgData is a chat message from the client. Sender identity is never read
// from the frame; it comes from the authenticated connection.
type MsgData struct {
	RoomID int64  `json:"room_id"`
	Text   string `json:"text"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a delivered chat message, enriched with the durable id and
// timestamp the store assigned.
type EventMessage struct {
	ID         int64  `json:"id"`
	RoomID     int64  `json:"room_id"`
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name"`
	SenderRole string `json:"sender_role"`
	Text       string `json:"text"`
	TS         int64  `json:"ts"`
}

// EventUserJoined notifies that a user joined a room.
type EventUserJoined struct {
	RoomID int64  `json:"room_id"`
	User   string `json:"user"`
}

// EventUserLeft notifies that a user left a room.
type EventUserLeft struct {
	RoomID int64  `json:"room_id"`
	User   string `json:"user"`
}

// EventHistory delivers the room backlog to a client that just joined.
type EventHistory struct {
	RoomID   int64          `json:"room_id"`
	Messages []EventMessage `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
