package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/team-schedule/services"
)

// ObjectHandler: загрузка и раздача картинок со счётом матчей.
type ObjectHandler struct {
	objectService services.ObjectService
}

func NewObjectHandler(objects services.ObjectService) *ObjectHandler {
	return &ObjectHandler{objectService: objects}
}

// RequestUpload выдаёт подписанный адрес, по которому клиент сам загружает файл.
func (h *ObjectHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	var input services.RequestUploadInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	target, err := h.objectService.RequestUpload(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, target)
}

func (h *ObjectHandler) ServeObject(w http.ResponseWriter, r *http.Request) {
	objectPath := services.ObjectPathPrefix + chi.URLParam(r, "*")

	body, info, err := h.objectService.Open(r.Context(), objectPath)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "failed to stream object", slog.String("path", objectPath), slog.Any("error", err))
	}
}

// ReceiveUpload принимает PUT по подписанному адресу локального хранилища.
func (h *ObjectHandler) ReceiveUpload(w http.ResponseWriter, r *http.Request) {
	token, err := pathParam(r, "token")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	objectPath, err := h.objectService.Receive(r.Context(), token, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"objectPath": objectPath})
}
