package handlers

import (
	"net/http"

	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type NotificationHandler struct {
	service *services.NotificationService
	resp    *Responder
}

func NewNotificationHandler(service *services.NotificationService, resp *Responder) *NotificationHandler {
	return &NotificationHandler{service: service, resp: resp}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	notifications, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.MarkAsRead(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Notification deleted successfully")
}
