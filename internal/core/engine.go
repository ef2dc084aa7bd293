package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"aulachat/internal/store"
)

// EngineStore is the durable surface the engine needs: room existence plus
// the message log.
type EngineStore interface {
	GetRoomByID(ctx context.Context, id int64) (*store.Room, error)
	store.MessageStore
}

// Engine orchestrates the message pipeline: validate, dedup-check, persist,
// fan out. It is callable concurrently from many connections; persistence and
// the dedup check are serialized per room, while different rooms proceed
// independently.
type Engine struct {
	registry *Registry
	store    EngineStore
	dedup    *DedupWindow
	log      *zerolog.Logger

	mu        sync.Mutex
	roomLocks map[int64]*sync.Mutex

	// now is the single time source for persisted created_at values.
	now func() time.Time
}

// NewEngine builds an engine over the given store.
func NewEngine(st EngineStore, dedupWindow time.Duration, logger *zerolog.Logger) *Engine {
	return &Engine{
		registry:  NewRegistry(),
		store:     st,
		dedup:     NewDedupWindow(st, dedupWindow),
		log:       logger,
		roomLocks: make(map[int64]*sync.Mutex),
		now:       time.Now,
	}
}

// roomLock returns the serialization point for a room, creating it on first use.
func (e *Engine) roomLock(roomID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		e.roomLocks[roomID] = lock
	}
	return lock
}

// requireRoom checks that the room exists in the durable store.
func (e *Engine) requireRoom(ctx context.Context, roomID int64) *Error {
	if _, err := e.store.GetRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeRoomNotFound, "room not found")
		}
		e.log.Error().Err(err).Int64("room_id", roomID).Msg("room lookup failed")
		return coreError(ErrCodeStoreUnavailable, "store unavailable")
	}
	return nil
}

// Join subscribes the client to a room's fan-out set. Rejoining is a no-op.
// The room backlog is pushed to the joining client and the remaining members
// are told who arrived.
func (e *Engine) Join(ctx context.Context, c *Client, roomID int64) error {
	if roomID == 0 {
		return coreError(ErrCodeValidation, "room is required")
	}
	if coreErr := e.requireRoom(ctx, roomID); coreErr != nil {
		return coreErr
	}

	if !e.registry.Join(roomID, c) {
		return nil
	}

	e.log.Debug().Str("client_id", c.ID).Int64("room_id", roomID).Msg("client joined room")

	if history, err := e.store.ListMessages(ctx, roomID); err != nil {
		// Backlog push is best-effort; the client still joined.
		e.log.Warn().Err(err).Int64("room_id", roomID).Msg("history load failed")
	} else {
		messages := make([]Message, 0, len(history))
		for _, m := range history {
			messages = append(messages, messageFromStore(m))
		}
		c.deliver(&Event{Kind: EventHistory, RoomID: roomID, Messages: messages})
	}

	e.announce(roomID, c, &Event{Kind: EventUserJoined, RoomID: roomID, User: c.Name})
	return nil
}

// Leave unsubscribes the client from a room. Leaving a room the client is not
// in is a no-op.
func (e *Engine) Leave(ctx context.Context, c *Client, roomID int64) error {
	if roomID == 0 {
		return coreError(ErrCodeValidation, "room is required")
	}
	if !e.registry.Leave(roomID, c) {
		return nil
	}

	e.log.Debug().Str("client_id", c.ID).Int64("room_id", roomID).Msg("client left room")
	e.announce(roomID, c, &Event{Kind: EventUserLeft, RoomID: roomID, User: c.Name})
	return nil
}

// Disconnect removes the client from every room it belonged to. It is the
// only cancellation signal a connection has; an in-flight persist is never
// aborted by it.
func (e *Engine) Disconnect(c *Client) {
	left := e.registry.RemoveClient(c)
	for _, roomID := range left {
		e.announce(roomID, c, &Event{Kind: EventUserLeft, RoomID: roomID, User: c.Name})
	}
	if len(left) > 0 {
		e.log.Debug().Str("client_id", c.ID).Int("rooms", len(left)).Msg("client disconnected")
	}
}

// Send runs the full ingress pipeline for one message event. On success the
// persisted message is delivered to every current room member except the
// originating connection (which already has local echo). A suppressed
// duplicate returns nil: the original send already succeeded, so suppression
// is invisible to the sender.
func (e *Engine) Send(ctx context.Context, sender *Client, roomID int64, body string) error {
	if roomID == 0 || body == "" || sender.UserID == 0 || sender.Name == "" || !sender.Role.Valid() {
		return coreError(ErrCodeValidation, "room, sender identity and body are required")
	}
	if coreErr := e.requireRoom(ctx, roomID); coreErr != nil {
		return coreErr
	}

	// Dedup check and persist must be serialized per room: two concurrent
	// sends must not both pass the check against a state neither has written.
	lock := e.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	accept, err := e.dedup.ShouldAccept(ctx, roomID, sender.UserID, body, now)
	if err != nil {
		e.log.Error().Err(err).Int64("room_id", roomID).Msg("dedup check failed")
		return coreError(ErrCodeStoreUnavailable, "store unavailable")
	}
	if !accept {
		e.log.Debug().
			Int64("room_id", roomID).
			Int64("sender_id", sender.UserID).
			Msg("duplicate message suppressed")
		return nil
	}

	saved, err := e.store.AppendMessage(ctx, &store.Message{
		RoomID:     roomID,
		SenderID:   sender.UserID,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		Body:       body,
		CreatedAt:  now,
	})
	if err != nil {
		e.log.Error().Err(err).Int64("room_id", roomID).Msg("message persist failed")
		return coreError(ErrCodeStoreUnavailable, "message could not be saved")
	}

	event := &Event{
		Kind:    EventDelivered,
		RoomID:  roomID,
		Message: messageFromStore(saved),
	}
	for _, member := range e.registry.MembersOf(roomID) {
		if member == sender {
			continue
		}
		if !member.deliver(event) {
			e.log.Warn().
				Str("client_id", member.ID).
				Int64("room_id", roomID).
				Msg("dropped event for slow consumer")
		}
	}

	return nil
}

// History returns the full ordered backlog of a room.
func (e *Engine) History(ctx context.Context, roomID int64) ([]Message, error) {
	if roomID == 0 {
		return nil, coreError(ErrCodeValidation, "room is required")
	}
	if coreErr := e.requireRoom(ctx, roomID); coreErr != nil {
		return nil, coreErr
	}

	history, err := e.store.ListMessages(ctx, roomID)
	if err != nil {
		e.log.Error().Err(err).Int64("room_id", roomID).Msg("history load failed")
		return nil, coreError(ErrCodeStoreUnavailable, "store unavailable")
	}

	messages := make([]Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, messageFromStore(m))
	}
	return messages, nil
}

// announce delivers an event to every room member except origin. Delivery is
// independent and best-effort per member.
func (e *Engine) announce(roomID int64, origin *Client, event *Event) {
	for _, member := range e.registry.MembersOf(roomID) {
		if member == origin {
			continue
		}
		member.deliver(event)
	}
}
