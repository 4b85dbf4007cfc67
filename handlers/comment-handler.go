package handlers

import (
	"net/http"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type CommentHandler struct {
	service *services.CommentService
	resp    *Responder
}

func NewCommentHandler(service *services.CommentService, resp *Responder) *CommentHandler {
	return &CommentHandler{service: service, resp: resp}
}

func (h *CommentHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, err := userAndPath(r, "taskId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	comments, err := h.service.List(r.Context(), userID, taskID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	comment, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.UpdateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	comment, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Comment deleted successfully")
}
