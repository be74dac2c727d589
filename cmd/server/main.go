package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"scratchbook-server/internal/config"
	"scratchbook-server/internal/handler"
	"scratchbook-server/internal/middleware"
	"scratchbook-server/internal/repository"
	"scratchbook-server/internal/service"
	"scratchbook-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Env)

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	if err := repository.EnsureDatabase(context.Background(), client, cfg.Database.Name); err != nil {
		log.Fatalf("Failed to prepare database: %v", err)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	noteRepo := repository.NewNoteRepository(client, cfg.Database.Name)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	noteService := service.NewNoteService(noteRepo, userRepo)

	cookieSecure := cfg.Server.Env == "production"
	authHandler := handler.NewAuthHandler(authService, log, cfg.JWT.Expiration, cookieSecure)
	noteHandler := handler.NewNoteHandler(noteService, log)

	var authLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	}

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(cfg.CORS.ClientOrigin))

	api := r.PathPrefix("/api").Subrouter()

	// Register and login stay outside the session verifier: a stale or
	// rotated-out cookie must never block re-authentication.
	sessionAuth := middleware.AuthMiddleware(cfg.JWT.Secret)

	users := api.PathPrefix("/users").Subrouter()
	users.Handle("", middleware.RateLimitMiddleware(authLimiter)(http.HandlerFunc(authHandler.Register))).Methods("POST", "OPTIONS")
	users.Handle("/auth", middleware.RateLimitMiddleware(authLimiter)(http.HandlerFunc(authHandler.Login))).Methods("POST", "OPTIONS")
	users.Handle("/auth", sessionAuth(http.HandlerFunc(authHandler.GetCurrentUser))).Methods("GET", "OPTIONS")
	users.Handle("/logout", sessionAuth(http.HandlerFunc(authHandler.Logout))).Methods("GET", "OPTIONS")

	notes := api.PathPrefix("/notes").Subrouter()
	notes.Use(sessionAuth)
	notes.HandleFunc("", noteHandler.List).Methods("GET", "OPTIONS")
	notes.HandleFunc("", noteHandler.Create).Methods("POST", "OPTIONS")
	notes.HandleFunc("/{id}", noteHandler.Get).Methods("GET", "OPTIONS")
	notes.HandleFunc("/{id}", noteHandler.Update).Methods("PATCH", "OPTIONS")
	notes.HandleFunc("/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/health", healthHandler).Methods("GET")

	// In production the server also ships the built client; everything
	// outside /api falls back to the SPA entry point.
	if cfg.Server.Env == "production" && cfg.Server.ClientDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: cfg.Server.ClientDir})
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server is running in %s mode on %s", cfg.Server.Env, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"scratchbook-server"}`))
}

// spaHandler serves files from the client build directory, answering any
// path without a matching file with index.html so client-side routing works.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}

	http.FileServer(http.Dir(h.dir)).ServeHTTP(w, r)
}
