package service

import "scratchbook-server/internal/domain"

// The visibility/ownership policy. Each function returns nil to allow or
// ErrNoteForbidden to deny; callers resolve not-found before consulting the
// policy, so a 404 always wins over a 403.

// CanRead allows:
//   - any caller, for an ownerless note (link-accessible regardless of the
//     stored private flag),
//   - any caller, for a public note,
//   - the owner, for a private note.
func CanRead(note *domain.Note, caller domain.Caller) error {
	if note.Ownerless() {
		return nil
	}
	if !note.Private {
		return nil
	}
	if note.UserID == caller.ID && !caller.IsAnonymous() {
		return nil
	}
	return ErrNoteForbidden
}

// CanWrite allows mutation when the note has no owner to enforce against,
// or when the caller is the owner. An anonymous caller is never the owner
// of an owned note.
func CanWrite(note *domain.Note, caller domain.Caller) error {
	if note.Ownerless() {
		return nil
	}
	if note.UserID == caller.ID && !caller.IsAnonymous() {
		return nil
	}
	return ErrNoteForbidden
}

// CanDelete mirrors CanWrite: deletion is an ownership question, not a
// visibility one.
func CanDelete(note *domain.Note, caller domain.Caller) error {
	return CanWrite(note, caller)
}
