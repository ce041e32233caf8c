package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func postJSON(t *testing.T, env *testEnv, path, body string) *http.Response {
	t.Helper()

	resp, err := env.ts.Client().Post(env.ts.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupSetsTokenCookies(t *testing.T) {
	env := startTestServer(t)

	resp := postJSON(t, env, "/api/signup", `{"username":"alice","password":"password123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var user UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}

	access := findCookie(resp, "access_token")
	refresh := findCookie(resp, RefreshCookieName)
	if access == nil || refresh == nil {
		t.Fatalf("expected both token cookies, got %v", resp.Cookies())
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Fatalf("token cookies must be HttpOnly")
	}

	// The cookie pair as a browser would send it back authenticates the connection.
	header := refresh.Name + "=" + refresh.Value + "; " + access.Name + "=" + access.Value
	id := env.authn.Authenticate(context.Background(), header)
	if id.UserID != user.ID {
		t.Fatalf("expected identity for user %d, got %+v", user.ID, id)
	}
}

func TestSignupErrors(t *testing.T) {
	env := startTestServer(t)

	if resp := postJSON(t, env, "/api/signup", `{"username":"bob","password":"password123"}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "duplicate", body: `{"username":"bob","password":"password123"}`, want: http.StatusConflict},
		{name: "short password", body: `{"username":"carol","password":"123"}`, want: http.StatusBadRequest},
		{name: "short username", body: `{"username":"cj","password":"password123"}`, want: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, want: http.StatusBadRequest},
		{name: "not json", body: `nope`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := postJSON(t, env, "/api/signup", tt.body); resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	env := startTestServer(t)
	if _, _, err := env.authService.Signup(context.Background(), "dave", "password123"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	resp := postJSON(t, env, "/api/login", `{"username":"dave","password":"password123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if findCookie(resp, "access_token") == nil {
		t.Fatalf("expected access_token cookie")
	}

	if resp := postJSON(t, env, "/api/login", `{"username":"dave","password":"wrong-password"}`); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dialRoom(ctx, t, env, "lobby", nil)
	dialRoom(ctx, t, env, "lobby", nil)
	dialRoom(ctx, t, env, "other", nil)
	waitFor(t, "three connections", func() bool { return env.registry.ConnectionCount() == 3 })

	resp, err := env.ts.Client().Get(env.ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats request: %v", err)
	}
	defer resp.Body.Close()

	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Rooms != 2 || stats.Connections != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
