package handlers

import (
	"net/http"
	"strconv"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type ProjectHandler struct {
	service *services.ProjectService
	resp    *Responder
}

func NewProjectHandler(service *services.ProjectService, resp *Responder) *ProjectHandler {
	return &ProjectHandler{service: service, resp: resp}
}

func (h *ProjectHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, err := userAndPath(r, "workspaceId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	projects, err := h.service.ListByWorkspace(r.Context(), userID, workspaceID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	project, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	project, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var patch models.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	project, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Project deleted successfully")
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	member, err := h.service.AddMember(r.Context(), userID, id, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, member)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	memberID, err := pathUUID(r, "userId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.RemoveMember(r.Context(), userID, id, memberID); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Member removed successfully")
}

// Activity returns the project's activity feed, newest first.
func (h *ProjectHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			h.resp.Error(w, r, apperrors.Validation(apperrors.FieldError{Field: "limit", Message: "Limit must be an integer"}))
			return
		}
	}
	activity, err := h.service.Activity(r.Context(), userID, id, limit)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, activity)
}
