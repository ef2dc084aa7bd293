package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"aulachat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUserAndRoom(t *testing.T, s *SQLiteStore) (*store.User, *store.Room) {
	t.Helper()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "maria", "hash", store.RoleTutor, "algebra tutor")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	room, err := s.CreateRoom(ctx, &store.Room{Name: "algebra", Description: "homework help", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return user, room
}

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "diego", "hash", store.RoleStudent, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 || created.Role != store.RoleStudent {
		t.Fatalf("unexpected user: %+v", created)
	}

	byName, err := s.GetUserByUsername(ctx, "diego")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("lookup mismatch: %d vs %d", byName.ID, created.ID)
	}

	if _, err := s.CreateUser(ctx, "diego", "hash2", store.RoleTutor, ""); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := s.GetUserByUsername(ctx, "nadie"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRoomAddsOwnerMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, room := seedUserAndRoom(t, s)

	isMember, err := s.IsMember(ctx, user.ID, room.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !isMember {
		t.Fatalf("owner should be a member of the created room")
	}

	if _, err := s.CreateRoom(ctx, &store.Room{Name: "algebra", OwnerID: user.ID}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}

	rooms, err := s.ListUserRooms(ctx, user.ID)
	if err != nil {
		t.Fatalf("list user rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != room.ID {
		t.Fatalf("unexpected user rooms: %+v", rooms)
	}
}

func TestAddMemberIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, room := seedUserAndRoom(t, s)

	student, err := s.CreateUser(ctx, "ana", "hash", store.RoleStudent, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := s.AddMember(ctx, student.ID, room.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := s.AddMember(ctx, student.ID, room.ID); err != nil {
		t.Fatalf("re-add member should be a no-op: %v", err)
	}

	isMember, err := s.IsMember(ctx, student.ID, room.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !isMember {
		t.Fatalf("expected membership")
	}
}

func TestAppendAndListMessagesOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, room := seedUserAndRoom(t, s)

	base := time.Now().UTC().Truncate(time.Second)
	bodies := []string{"uno", "dos", "tres"}
	for i, body := range bodies {
		saved, err := s.AppendMessage(ctx, &store.Message{
			RoomID:     room.ID,
			SenderID:   user.ID,
			SenderName: user.Username,
			SenderRole: user.Role,
			Body:       body,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("append %q: %v", body, err)
		}
		if saved.ID == 0 {
			t.Fatalf("append did not assign an id")
		}
	}

	messages, err := s.ListMessages(ctx, room.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(messages))
	}
	for i, msg := range messages {
		if msg.Body != bodies[i] {
			t.Fatalf("message %d out of order: got %q want %q", i, msg.Body, bodies[i])
		}
		if i > 0 && msg.ID <= messages[i-1].ID {
			t.Fatalf("ids not ascending: %d then %d", messages[i-1].ID, msg.ID)
		}
		if msg.SenderName != user.Username || msg.SenderRole != user.Role {
			t.Fatalf("sender identity lost: %+v", msg)
		}
	}
}

func TestRecentMatchWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, room := seedUserAndRoom(t, s)

	at := time.Now().UTC().Truncate(time.Second)
	if _, err := s.AppendMessage(ctx, &store.Message{
		RoomID:     room.ID,
		SenderID:   user.ID,
		SenderName: user.Username,
		SenderRole: user.Role,
		Body:       "hola",
		CreatedAt:  at,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	tests := []struct {
		name  string
		body  string
		since time.Time
		want  bool
	}{
		{"inside window", "hola", at.Add(-5 * time.Second), true},
		{"boundary equals created_at", "hola", at, true},
		{"window already passed", "hola", at.Add(time.Second), false},
		{"different body", "hola!", at.Add(-5 * time.Second), false},
		{"case differs", "Hola", at.Add(-5 * time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.RecentMatch(ctx, room.ID, user.ID, tt.body, tt.since)
			if err != nil {
				t.Fatalf("recent match: %v", err)
			}
			if got != tt.want {
				t.Errorf("RecentMatch(%q, since=%v) = %v, want %v", tt.body, tt.since, got, tt.want)
			}
		})
	}

	// Same body from a different sender is never a match.
	other, err := s.CreateUser(ctx, "pablo", "hash", store.RoleStudent, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := s.RecentMatch(ctx, room.ID, other.ID, "hola", at.Add(-5*time.Second))
	if err != nil {
		t.Fatalf("recent match: %v", err)
	}
	if got {
		t.Fatalf("match should be scoped to the sender")
	}
}

func TestRatingsAverageAndConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, room := seedUserAndRoom(t, s)

	raters := []struct {
		name   string
		rating int
	}{
		{"ana", 5},
		{"luis", 2},
	}
	for _, r := range raters {
		user, err := s.CreateUser(ctx, r.name, "hash", store.RoleStudent, "")
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if _, err := s.CreateRating(ctx, &store.Rating{
			RoomID:   room.ID,
			UserID:   user.ID,
			Username: user.Username,
			Rating:   r.rating,
			Comment:  "ok",
		}); err != nil {
			t.Fatalf("create rating: %v", err)
		}
	}

	updated, err := s.GetRoomByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if updated.AverageRating != 3.5 {
		t.Fatalf("expected average 3.5, got %v", updated.AverageRating)
	}

	ana, err := s.GetUserByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if _, err := s.CreateRating(ctx, &store.Rating{
		RoomID:   room.ID,
		UserID:   ana.ID,
		Username: ana.Username,
		Rating:   1,
		Comment:  "changed my mind",
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for second rating, got %v", err)
	}

	ratings, err := s.ListRatings(ctx, room.ID)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(ratings) != 2 {
		t.Fatalf("expected 2 ratings, got %d", len(ratings))
	}
}
