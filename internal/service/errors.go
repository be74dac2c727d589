package service

import "errors"

// Error kinds raised by the services. The handler package is the only place
// that maps these to HTTP status codes.
var (
	// ErrNoteNotFound is checked before any ownership rule is evaluated.
	ErrNoteNotFound = errors.New("Note not found")

	// ErrNoteForbidden means the note exists but the caller fails the
	// visibility/ownership policy.
	ErrNoteForbidden = errors.New("You are not authorized to view this note")

	// ErrInvalidCredentials is deliberately uniform for unknown usernames
	// and wrong passwords so login cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrUsernameTaken is the registration conflict.
	ErrUsernameTaken = errors.New("Username already exists")
)
