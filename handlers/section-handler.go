package handlers

import (
	"net/http"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type SectionHandler struct {
	service *services.SectionService
	resp    *Responder
}

func NewSectionHandler(service *services.SectionService, resp *Responder) *SectionHandler {
	return &SectionHandler{service: service, resp: resp}
}

func (h *SectionHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := userAndPath(r, "projectId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	sections, err := h.service.List(r.Context(), userID, projectID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, sections)
}

func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.CreateSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	section, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, section)
}

func (h *SectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var patch models.SectionPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	section, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, section)
}

// Delete honours ?moveTasks=delete or ?moveTasks=<section id>.
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id, r.URL.Query().Get("moveTasks")); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Section deleted successfully")
}
