package http

import (
	stdhttp "net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	created := env.registerUser(t, "maria", "tutor")
	if created.Token == "" || created.UserID == 0 || created.Role != "tutor" {
		t.Fatalf("unexpected register response: %+v", created)
	}

	resp := env.request(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{
		Username: "maria",
		Password: "password1",
		Role:     "student",
	})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{
		Username: "diego",
		Password: "password1",
		Role:     "admin",
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("bad role register: status %d, want 400", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{
		Username: "maria",
		Password: "password1",
	})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("login: status %d, want 200", resp.StatusCode)
	}
	var loggedIn AuthResponse
	decodeBody(t, resp, &loggedIn)
	if loggedIn.UserID != created.UserID {
		t.Fatalf("login returned different user: %d vs %d", loggedIn.UserID, created.UserID)
	}

	resp = env.request(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{
		Username: "maria",
		Password: "wrong-password",
	})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("bad login: status %d, want 401", resp.StatusCode)
	}
}

func TestRoomsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, stdhttp.MethodGet, "/api/rooms", "", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d, want 401", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodGet, "/api/rooms", "not-a-token", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", resp.StatusCode)
	}
}

func TestRoomLifecycle(t *testing.T) {
	env := newTestEnv(t)
	maria := env.registerUser(t, "maria", "tutor")

	room := env.createRoom(t, maria.Token, "algebra")
	if room.OwnerID != maria.UserID {
		t.Fatalf("owner mismatch: %+v", room)
	}

	resp := env.request(t, stdhttp.MethodPost, "/api/rooms", maria.Token, CreateRoomRequest{Name: "algebra"})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("duplicate room: status %d, want 409", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodGet, "/api/rooms", maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("list rooms: status %d", resp.StatusCode)
	}
	var rooms []RoomResponse
	decodeBody(t, resp, &rooms)
	if len(rooms) != 1 || rooms[0].ID != room.ID {
		t.Fatalf("unexpected room list: %+v", rooms)
	}

	resp = env.request(t, stdhttp.MethodGet, roomPath(room.ID, ""), maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("get room: status %d", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodGet, roomPath(9999, ""), maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("get unknown room: status %d, want 404", resp.StatusCode)
	}

	// The creator is already a member.
	resp = env.request(t, stdhttp.MethodGet, "/api/me/rooms", maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("my rooms: status %d", resp.StatusCode)
	}
	var mine []RoomResponse
	decodeBody(t, resp, &mine)
	if len(mine) != 1 || mine[0].ID != room.ID {
		t.Fatalf("unexpected my rooms: %+v", mine)
	}

	// A fresh room has no backlog.
	resp = env.request(t, stdhttp.MethodGet, roomPath(room.ID, "/messages"), maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("history: status %d", resp.StatusCode)
	}
	var messages []MessageResponse
	decodeBody(t, resp, &messages)
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %+v", messages)
	}

	resp = env.request(t, stdhttp.MethodGet, roomPath(9999, "/messages"), maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("history of unknown room: status %d, want 404", resp.StatusCode)
	}
}

func TestPrivateRoomJoin(t *testing.T) {
	env := newTestEnv(t)
	maria := env.registerUser(t, "maria", "tutor")
	ana := env.registerUser(t, "ana", "student")

	resp := env.request(t, stdhttp.MethodPost, "/api/rooms", maria.Token, CreateRoomRequest{
		Name:      "exam prep",
		IsPrivate: true,
		Password:  "secreto",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create private room: status %d", resp.StatusCode)
	}
	var room RoomResponse
	decodeBody(t, resp, &room)

	// A private room without a password is rejected up front.
	resp = env.request(t, stdhttp.MethodPost, "/api/rooms", maria.Token, CreateRoomRequest{
		Name:      "no password",
		IsPrivate: true,
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("private room without password: status %d, want 400", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/join"), ana.Token, JoinRoomRequest{Password: "wrong"})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("wrong password join: status %d, want 401", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/join"), ana.Token, JoinRoomRequest{Password: "secreto"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("join: status %d, want 200", resp.StatusCode)
	}

	// Joining again is a no-op.
	resp = env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/join"), ana.Token, JoinRoomRequest{Password: "secreto"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("rejoin: status %d, want 200", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodGet, "/api/me/rooms", ana.Token, nil)
	var mine []RoomResponse
	decodeBody(t, resp, &mine)
	if len(mine) != 1 || mine[0].ID != room.ID {
		t.Fatalf("unexpected memberships after join: %+v", mine)
	}
}

func TestRatingsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	maria := env.registerUser(t, "maria", "tutor")
	ana := env.registerUser(t, "ana", "student")

	room := env.createRoom(t, maria.Token, "algebra")

	resp := env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/ratings"), ana.Token, CreateRatingRequest{
		Rating:  5,
		Comment: "great explanations",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create rating: status %d", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/ratings"), ana.Token, CreateRatingRequest{
		Rating:  1,
		Comment: "changed my mind",
	})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("second rating: status %d, want 409", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, roomPath(room.ID, "/ratings"), maria.Token, CreateRatingRequest{
		Rating:  6,
		Comment: "too good",
	})
	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("out-of-range rating: status %d, want 400", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodPost, roomPath(9999, "/ratings"), ana.Token, CreateRatingRequest{
		Rating:  3,
		Comment: "which room",
	})
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("rating unknown room: status %d, want 404", resp.StatusCode)
	}

	resp = env.request(t, stdhttp.MethodGet, roomPath(room.ID, "/ratings"), maria.Token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("list ratings: status %d", resp.StatusCode)
	}
	var ratings []RatingResponse
	decodeBody(t, resp, &ratings)
	if len(ratings) != 1 || ratings[0].Username != "ana" || ratings[0].Rating != 5 {
		t.Fatalf("unexpected ratings: %+v", ratings)
	}
}
