package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/middleware"
)

func decodeMsg(t *testing.T, body string) string {
	t.Helper()
	var out struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("failed to decode error body %q: %v", body, err)
	}
	return out.Msg
}

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users", strings.NewReader(`{"username":"alice","password":"password123"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var user domain.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want %q", user.Username, "alice")
	}
	if user.ID == "" {
		t.Error("response has no id")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks password field")
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "username too short",
			body:    `{"username":"ab","password":"password123"}`,
			wantMsg: "username must be at least 3 characters",
		},
		{
			name:    "username too long",
			body:    `{"username":"abcdefghijk","password":"password123"}`,
			wantMsg: "username cannot exceed 10 characters",
		},
		{
			name:    "username invalid characters",
			body:    `{"username":"al ice","password":"password123"}`,
			wantMsg: "username can only contain letters, numbers, and underscores",
		},
		{
			name:    "password too short",
			body:    `{"username":"alice","password":"short"}`,
			wantMsg: "password must be at least 8 characters",
		},
		{
			name:    "missing password",
			body:    `{"username":"alice"}`,
			wantMsg: "password is required",
		},
		{
			name:    "malformed json",
			body:    `{"username":`,
			wantMsg: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/users", strings.NewReader(tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeMsg(t, rec.Body.String()); msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodPost, "/api/users", strings.NewReader(`{"username":"alice","password":"different1"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeMsg(t, rec.Body.String()); msg != "Username already exists" {
		t.Errorf("msg = %q, want %q", msg, "Username already exists")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodPost, "/api/users/auth", strings.NewReader(`{"username":"alice","password":"password123"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var user domain.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.ID != "user-1" || user.Username != "alice" {
		t.Errorf("user = %+v, want {user-1 alice}", user)
	}

	cookies := rec.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.TokenCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie set")
	}
	if session.Value == "" {
		t.Error("session cookie is empty")
	}
	if !session.HttpOnly {
		t.Error("session cookie is not http-only")
	}
	if session.MaxAge != 3600 {
		t.Errorf("cookie max-age = %d, want 3600", session.MaxAge)
	}
}

func TestAuthHandler_LoginFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alice", "password123")

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"username":"alice","password":"wrongwrong"}`},
		{name: "unknown username", body: `{"username":"nobody","password":"password123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/users/auth", strings.NewReader(tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeMsg(t, rec.Body.String()); msg != "Invalid credentials" {
				t.Errorf("msg = %q, want %q", msg, "Invalid credentials")
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("cookie set on failed login")
			}
		})
	}
}

// A stale cookie (expired token, rotated secret) must never block
// re-authentication: register and login ignore the session cookie entirely.
func TestAuthHandler_LoginWithStaleCookie(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodPost, "/api/users/auth",
		strings.NewReader(`{"username":"alice","password":"password123"}`),
		env.staleSessionCookie(t, alice))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var fresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			fresh = c
		}
	}
	if fresh == nil || fresh.Value == "" {
		t.Error("no fresh session cookie issued")
	}
}

func TestAuthHandler_RegisterWithStaleCookie(t *testing.T) {
	env := newTestEnv(t)
	other := env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"bob","password":"password456"}`),
		env.staleSessionCookie(t, other))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
}

// Verified routes still reject a stale cookie outright.
func TestAuthHandler_StaleCookieOnVerifiedRoutes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "user-1", "alice", "password123")

	for _, path := range []string{"/api/users/auth", "/api/notes"} {
		rec := env.do(t, http.MethodGet, path, nil, env.staleSessionCookie(t, alice))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodGet, "/api/users/auth", nil, env.sessionCookie(t, alice))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var user domain.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.ID != "user-1" || user.Username != "alice" {
		t.Errorf("user = %+v, want {user-1 alice}", user)
	}
}

func TestAuthHandler_GetCurrentUserAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/auth", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeMsg(t, rec.Body.String()); msg != "Unauthorized: No token in request" {
		t.Errorf("msg = %q, want %q", msg, "Unauthorized: No token in request")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "user-1", "alice", "password123")

	rec := env.do(t, http.MethodGet, "/api/users/logout", nil, env.sessionCookie(t, alice))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if msg := decodeMsg(t, rec.Body.String()); msg != "Logout successful" {
		t.Errorf("msg = %q, want %q", msg, "Logout successful")
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no expiring cookie set")
	}
	if session.Value != "" || session.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", session.Value, session.MaxAge)
	}
}

// Logout succeeds even without a session; the cookie is simply cleared.
func TestAuthHandler_LogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/logout", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
