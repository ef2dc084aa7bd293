package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"aulachat/internal/store"
)

// fakeStore is an in-memory EngineStore with controllable failures.
type fakeStore struct {
	mu         sync.Mutex
	rooms      map[int64]*store.Room
	messages   []*store.Message
	nextID     int64
	failAppend bool
}

func newFakeStore(roomIDs ...int64) *fakeStore {
	s := &fakeStore{rooms: make(map[int64]*store.Room)}
	for _, id := range roomIDs {
		s.rooms[id] = &store.Room{ID: id, Name: fmt.Sprintf("room-%d", id), OwnerID: 1}
	}
	return s
}

func (s *fakeStore) GetRoomByID(_ context.Context, id int64) (*store.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, store.ErrNotFound)
	}
	return room, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return nil, fmt.Errorf("disk on fire")
	}
	s.nextID++
	saved := *msg
	saved.ID = s.nextID
	s.messages = append(s.messages, &saved)
	return &saved, nil
}

func (s *fakeStore) ListMessages(_ context.Context, roomID int64) ([]*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Message, 0)
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) RecentMatch(_ context.Context, roomID, senderID int64, body string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.RoomID == roomID && m.SenderID == senderID && m.Body == body && !m.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) count(roomID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.RoomID == roomID {
			n++
		}
	}
	return n
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		case <-timeout:
			return
		}
	}
}
