// Command seed wipes the configured database and fills it with sample users
// and notes for development.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"scratchbook-server/internal/config"
	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/repository"
	"scratchbook-server/pkg/hash"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
)

type userSeed struct {
	username string
	password string
}

type noteSeed struct {
	title   string
	desc    string
	private bool
	owned   bool
}

var sampleUsers = []userSeed{
	{username: "alice", password: "password1"},
	{username: "bob", password: "password2"},
}

var sampleNotes = []noteSeed{
	{
		title: "Welcome to ScratchBook!",
		desc: `Welcome to ScratchBook!

This is a simple note taking app. Create an account to keep private notes, or scribble anonymously and share the link.`,
		owned: true,
	},
	{
		title: "Grocery List",
		desc: `- Milk
- Eggs
- Bread
- Coffee beans
- Dark chocolate`,
		owned: true,
	},
	{
		title:   "Project Ideas",
		desc:    "1. Habit tracker with streaks\n2. Minimalist pomodoro timer\n3. Markdown blog CMS",
		private: true,
		owned:   true,
	},
	{
		title: "API Endpoints",
		desc: `GET    /api/notes      list
POST   /api/notes      create
GET    /api/notes/{id} single note
PATCH  /api/notes/{id} update
DELETE /api/notes/{id} delete`,
		owned: true,
	},
	{
		title: "Left by a passerby",
		desc:  "Nobody owns this note. Anyone can read it, edit it, or throw it away.",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("failed to connect to CouchDB: %v", err)
	}

	ctx := context.Background()

	log.Printf("cleaning database %s...", cfg.Database.Name)
	if err := client.DestroyDB(ctx, cfg.Database.Name); err != nil && kivik.HTTPStatus(err) != http.StatusNotFound {
		log.Fatalf("failed to destroy database: %v", err)
	}

	if err := repository.EnsureDatabase(ctx, client, cfg.Database.Name); err != nil {
		log.Fatalf("failed to prepare database: %v", err)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	noteRepo := repository.NewNoteRepository(client, cfg.Database.Name)

	ownerID := ""
	for i, u := range sampleUsers {
		hashed, err := hash.Hash(u.password)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", u.username, err)
		}

		now := time.Now()
		user := &domain.User{
			ID:        uuid.New().String(),
			Username:  u.username,
			Password:  hashed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.username, err)
		}
		if i == 0 {
			ownerID = user.ID
		}
	}
	log.Printf("seeded %d users", len(sampleUsers))

	for _, n := range sampleNotes {
		now := time.Now()
		note := &domain.Note{
			ID:        uuid.New().String(),
			Title:     n.title,
			Desc:      n.desc,
			Private:   n.private,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if n.owned {
			note.UserID = ownerID
		}
		if err := noteRepo.Create(ctx, note); err != nil {
			log.Fatalf("failed to seed note %q: %v", n.title, err)
		}
	}
	log.Printf("seeded %d notes", len(sampleNotes))

	log.Println("seeding complete")
}
