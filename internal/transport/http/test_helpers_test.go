package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aulachat/internal/auth"
	"aulachat/internal/config"
	"aulachat/internal/core"
	"aulachat/internal/store/sqlite"
)

// testEnv is a full server over an in-memory store, reachable via httptest.
type testEnv struct {
	ts     *httptest.Server
	store  *sqlite.SQLiteStore
	engine *core.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Default()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	})
	engine := core.NewEngine(st, cfg.DedupWindow, &logger)

	srv := NewServer(engine, authService, st, &cfg, &logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, engine: engine}
}

// request performs a JSON request against the test server, attaching the
// bearer token when given.
func (env *testEnv) request(t *testing.T, method, path, token string, body any) *stdhttp.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := stdhttp.NewRequest(method, env.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *stdhttp.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// registerUser creates an account through the API and returns its auth
// response, token included.
func (env *testEnv) registerUser(t *testing.T, username, role string) AuthResponse {
	t.Helper()

	resp := env.request(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{
		Username: username,
		Password: "password1",
		Role:     role,
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}

	var authResp AuthResponse
	decodeBody(t, resp, &authResp)
	return authResp
}

// createRoom creates a room through the API on behalf of the token's user.
func (env *testEnv) createRoom(t *testing.T, token, name string) RoomResponse {
	t.Helper()

	resp := env.request(t, stdhttp.MethodPost, "/api/rooms", token, CreateRoomRequest{Name: name})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("create room %s: status %d", name, resp.StatusCode)
	}

	var room RoomResponse
	decodeBody(t, resp, &room)
	return room
}

func roomPath(roomID int64, suffix string) string {
	return fmt.Sprintf("/api/rooms/%d%s", roomID, suffix)
}
