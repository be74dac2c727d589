package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo     repository.NoteRepository
	userRepo repository.UserRepository
}

func NewNoteService(repo repository.NoteRepository, userRepo repository.UserRepository) *NoteService {
	return &NoteService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// Create persists a note. An anonymous caller produces an ownerless note.
func (s *NoteService) Create(ctx context.Context, caller domain.Caller, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	now := time.Now()

	note := &domain.Note{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Desc:      req.Desc,
		Private:   req.Private,
		UserID:    caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, note, nil)
}

// List returns the notes visible to the caller in listings, newest first.
func (s *NoteService) List(ctx context.Context, caller domain.Caller) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.List(ctx, caller)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*domain.NoteOwner)
	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp, err := s.toResponse(ctx, n, owners)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

func (s *NoteService) GetByID(ctx context.Context, caller domain.Caller, noteID string) (*domain.NoteResponse, error) {
	note, err := s.findNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := CanRead(note, caller); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, note, nil)
}

// Update loads the note, authorizes the caller and applies the patch. Patched
// fields were already validated against the creation constraints upstream.
func (s *NoteService) Update(ctx context.Context, caller domain.Caller, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	note, err := s.findNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := CanWrite(note, caller); err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Desc != nil {
		note.Desc = *req.Desc
	}
	if req.Private != nil {
		note.Private = *req.Private
	}
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, note, nil)
}

func (s *NoteService) Delete(ctx context.Context, caller domain.Caller, noteID string) error {
	note, err := s.findNote(ctx, noteID)
	if err != nil {
		return err
	}

	if err := CanDelete(note, caller); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	return nil
}

func (s *NoteService) findNote(ctx context.Context, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	return note, nil
}

// toResponse joins the minimal owner projection onto the note. The cache map
// deduplicates owner lookups across a listing; pass nil for single notes.
func (s *NoteService) toResponse(ctx context.Context, note *domain.Note, cache map[string]*domain.NoteOwner) (*domain.NoteResponse, error) {
	resp := &domain.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Desc:      note.Desc,
		Private:   note.Private,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}

	if note.Ownerless() {
		return resp, nil
	}

	if cache != nil {
		if owner, ok := cache[note.UserID]; ok {
			resp.Owner = owner
			return resp, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, note.UserID)
	if err != nil {
		// A dangling reference (owner deleted out of band) degrades to an
		// ownerless projection; any other store failure surfaces.
		if errors.Is(err, repository.ErrNotFound) {
			return resp, nil
		}
		return nil, fmt.Errorf("failed to load note owner: %w", err)
	}

	resp.Owner = &domain.NoteOwner{ID: user.ID, Username: user.Username}
	if cache != nil {
		cache[note.UserID] = resp.Owner
	}

	return resp, nil
}
