package handlers

import (
	"net/http"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type AuthHandler struct {
	service *services.AuthService
	resp    *Responder
}

func NewAuthHandler(service *services.AuthService, resp *Responder) *AuthHandler {
	return &AuthHandler{service: service, resp: resp}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	auth, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, auth)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	auth, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, auth)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, user)
}
