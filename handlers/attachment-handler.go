package handlers

import (
	"errors"
	"net/http"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

// multipartOverhead covers form boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	service *services.AttachmentService
	resp    *Responder
	maxSize int64
}

func NewAttachmentHandler(service *services.AttachmentService, resp *Responder, maxSize int64) *AttachmentHandler {
	return &AttachmentHandler{service: service, resp: resp, maxSize: maxSize}
}

// Upload accepts a multipart form with a single "file" part.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, taskID, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.resp.Error(w, r, apperrors.BadRequest("File exceeds the %d byte limit", h.maxSize))
			return
		}
		h.resp.Error(w, r, apperrors.BadRequest("Invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.resp.Error(w, r, apperrors.BadRequest("No file uploaded"))
		return
	}
	defer file.Close()

	attachment, err := h.service.Upload(r.Context(), userID, taskID, services.Upload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  file,
	})
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, attachment)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Attachment deleted successfully")
}
