package handler

import (
	"encoding/json"
	"net/http"

	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/middleware"
	"scratchbook-server/internal/service"
	"scratchbook-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
	log      *logrus.Logger
}

func NewNoteHandler(service *service.NoteService, log *logrus.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, formatValidationError(err))
		return
	}

	caller := middleware.GetCaller(r)

	note, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r), "error": err.Error()}).Debug("Failed to create note")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"note": note.ID, "ip": middleware.ClientIP(r)}).Debug("Note created")
	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r)

	notes, err := h.service.List(r.Context(), caller)
	if err != nil {
		h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r), "error": err.Error()}).Debug("Failed to list notes")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r), "count": len(notes)}).Debug("Notes retrieved")
	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	caller := middleware.GetCaller(r)

	note, err := h.service.GetByID(r.Context(), caller, noteID)
	if err != nil {
		h.log.WithFields(logrus.Fields{"note": noteID, "ip": middleware.ClientIP(r), "error": err.Error()}).Debug("Failed to get note")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"note": note.ID, "ip": middleware.ClientIP(r)}).Debug("Note retrieved")
	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, formatValidationError(err))
		return
	}

	caller := middleware.GetCaller(r)

	note, err := h.service.Update(r.Context(), caller, noteID, &req)
	if err != nil {
		h.log.WithFields(logrus.Fields{"note": noteID, "ip": middleware.ClientIP(r), "error": err.Error()}).Debug("Failed to update note")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"note": note.ID, "ip": middleware.ClientIP(r)}).Debug("Note updated")
	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	caller := middleware.GetCaller(r)

	if err := h.service.Delete(r.Context(), caller, noteID); err != nil {
		h.log.WithFields(logrus.Fields{"note": noteID, "ip": middleware.ClientIP(r), "error": err.Error()}).Debug("Failed to delete note")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"note": noteID, "ip": middleware.ClientIP(r)}).Debug("Note deleted")
	response.NoContent(w)
}
