package repository

import (
	"errors"
	"net/http"

	"github.com/go-kivik/kivik/v4"
)

// ErrNotFound is returned when a document does not exist. Callers branch on
// this instead of inspecting driver error strings.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned when a write collides with an existing document id.
var ErrConflict = errors.New("document already exists")

func notFound(err error) error {
	if kivik.HTTPStatus(err) == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func conflict(err error) error {
	if kivik.HTTPStatus(err) == http.StatusConflict {
		return ErrConflict
	}
	return err
}
