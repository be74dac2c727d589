package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/middleware"
	"scratchbook-server/internal/repository"
	"scratchbook-server/internal/service"
	"scratchbook-server/pkg/hash"
	"scratchbook-server/pkg/jwt"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const testJWTSecret = "handler-test-secret"

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) add(u *domain.User) {
	m.users[u.ID] = u
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return repository.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

type mockNoteRepo struct {
	notes map[string]*domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*domain.Note)}
}

func (m *mockNoteRepo) add(n *domain.Note) {
	m.notes[n.ID] = n
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *mockNoteRepo) List(ctx context.Context, caller domain.Caller) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range m.notes {
		if !n.Private || (!caller.IsAnonymous() && n.UserID == caller.ID) {
			copied := *n
			notes = append(notes, &copied)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) error {
	if _, ok := m.notes[note.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

type testEnv struct {
	router    *mux.Router
	userRepo  *mockUserRepo
	noteRepo  *mockNoteRepo
	jwtSecret string
}

// newTestEnv wires handlers onto a router the same way cmd/server does,
// including the session middleware, so requests exercise the full chain.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := newMockUserRepo()
	noteRepo := newMockNoteRepo()

	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour)
	noteService := service.NewNoteService(noteRepo, userRepo)

	authHandler := NewAuthHandler(authService, log, time.Hour, false)
	noteHandler := NewNoteHandler(noteService, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Same mounting as cmd/server: register and login are not behind the
	// session verifier.
	sessionAuth := middleware.AuthMiddleware(testJWTSecret)

	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("", authHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/auth", authHandler.Login).Methods(http.MethodPost)
	users.Handle("/auth", sessionAuth(http.HandlerFunc(authHandler.GetCurrentUser))).Methods(http.MethodGet)
	users.Handle("/logout", sessionAuth(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodGet)

	notes := api.PathPrefix("/notes").Subrouter()
	notes.Use(sessionAuth)
	notes.HandleFunc("", noteHandler.List).Methods(http.MethodGet)
	notes.HandleFunc("", noteHandler.Create).Methods(http.MethodPost)
	notes.HandleFunc("/{id}", noteHandler.Get).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", noteHandler.Update).Methods(http.MethodPatch)
	notes.HandleFunc("/{id}", noteHandler.Delete).Methods(http.MethodDelete)

	return &testEnv{
		router:    r,
		userRepo:  userRepo,
		noteRepo:  noteRepo,
		jwtSecret: testJWTSecret,
	}
}

// seedUser stores a user with a bcrypt-hashed password and returns it.
func (env *testEnv) seedUser(t *testing.T, id, username, password string) *domain.User {
	t.Helper()

	hashed, err := hash.Hash(password)
	if err != nil {
		t.Fatalf("hash.Hash() error = %v", err)
	}

	u := &domain.User{
		ID:        id,
		Username:  username,
		Password:  hashed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	env.userRepo.add(u)
	return u
}

// sessionCookie mints a valid token cookie for the given user.
func (env *testEnv) sessionCookie(t *testing.T, u *domain.User) *http.Cookie {
	t.Helper()

	token, err := jwt.GenerateToken(u.ID, u.Username, time.Hour, env.jwtSecret)
	if err != nil {
		t.Fatalf("jwt.GenerateToken() error = %v", err)
	}
	return &http.Cookie{Name: middleware.TokenCookie, Value: token}
}

// staleSessionCookie mints an already-expired token cookie.
func (env *testEnv) staleSessionCookie(t *testing.T, u *domain.User) *http.Cookie {
	t.Helper()

	token, err := jwt.GenerateToken(u.ID, u.Username, -time.Hour, env.jwtSecret)
	if err != nil {
		t.Fatalf("jwt.GenerateToken() error = %v", err)
	}
	return &http.Cookie{Name: middleware.TokenCookie, Value: token}
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "192.0.2.1:50000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}
