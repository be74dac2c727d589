package handler

import (
	"errors"
	"net/http"

	"scratchbook-server/internal/service"
	"scratchbook-server/pkg/response"
)

const internalServerErrorMsg = "Something went wrong."

// writeServiceError is the single place a service error kind becomes an HTTP
// status. Anything unrecognized surfaces as a generic 500 with no internals.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrNoteForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, internalServerErrorMsg)
	}
}
