package repository

import (
	"context"
	"fmt"

	"scratchbook-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// List returns notes visible in listings for the given caller: every
	// public note plus the caller's own private notes, newest first.
	// Ownerless private notes never list; they stay reachable by id only.
	List(ctx context.Context, caller domain.Caller) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("note:%s", note.ID)
	_, err := db.Put(ctx, docID, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("note:%s", id)
	row := db.Get(ctx, docID)

	var note domain.Note
	if err := row.ScanDoc(&note); err != nil {
		return nil, notFound(err)
	}

	return &note, nil
}

func (r *noteRepository) List(ctx context.Context, caller domain.Caller) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	// title $exists scopes the query to note documents; users share the
	// same database.
	selector := map[string]interface{}{
		"title":   map[string]interface{}{"$exists": true},
		"private": false,
	}
	if !caller.IsAnonymous() {
		delete(selector, "private")
		selector["$or"] = []map[string]interface{}{
			{"private": false},
			{"private": true, "user_id": caller.ID},
		}
	}

	query := map[string]interface{}{
		"selector": selector,
		"sort": []map[string]string{
			{"created_at": "desc"},
		},
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.ScanDoc(&note); err != nil {
			continue
		}
		notes = append(notes, &note)
	}

	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%s", note.ID)

	var existingDoc map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return notFound(err)
	}

	existingDoc["title"] = note.Title
	existingDoc["desc"] = note.Desc
	existingDoc["private"] = note.Private
	existingDoc["updated_at"] = note.UpdatedAt

	if note.UserID != "" {
		existingDoc["user_id"] = note.UserID
	} else {
		delete(existingDoc, "user_id")
	}

	_, err := db.Put(ctx, docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("note:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return notFound(err)
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(ctx, docID, rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
