package domain

import "time"

type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Desc  string `json:"desc"`

	// Private only restricts access when the note has an owner; an
	// ownerless note is reachable by anyone holding its id.
	Private bool `json:"private"`

	// UserID is an optional weak reference to the owner. Empty means the
	// note was created anonymously ("guest" note).
	UserID string `json:"user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Note) Ownerless() bool {
	return n.UserID == ""
}

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Desc    string `json:"desc" validate:"required,min=3,max=1024"`
	Private bool   `json:"private"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=100"`
	Desc    *string `json:"desc" validate:"omitempty,min=3,max=1024"`
	Private *bool   `json:"private"`
}

// NoteOwner is the owner projection joined into note responses. Only the
// public identity ever leaves the store.
type NoteOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type NoteResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Desc      string     `json:"desc"`
	Private   bool       `json:"private"`
	Owner     *NoteOwner `json:"owner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
