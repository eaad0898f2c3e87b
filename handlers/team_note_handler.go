package handlers

import (
	"net/http"

	"github.com/Dosada05/team-schedule/services"
)

// TeamNoteHandler: журнал команды; записи только добавляются и удаляются.
type TeamNoteHandler struct {
	noteService services.TeamNoteService
}

func NewTeamNoteHandler(ns services.TeamNoteService) *TeamNoteHandler {
	return &TeamNoteHandler{noteService: ns}
}

func (h *TeamNoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamNoteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, note)
}

func (h *TeamNoteHandler) GetAllNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.GetAllNotes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, notes)
}

func (h *TeamNoteHandler) GetNoteByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	note, err := h.noteService.GetNoteByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, note)
}

func (h *TeamNoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
