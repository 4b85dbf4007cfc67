package handlers

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

type TaskHandler struct {
	service *services.TaskService
	resp    *Responder
}

func NewTaskHandler(service *services.TaskService, resp *Responder) *TaskHandler {
	return &TaskHandler{service: service, resp: resp}
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := userAndPath(r, "projectId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	tasks, err := h.service.List(r.Context(), userID, projectID, filter)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, tasks)
}

func parseTaskFilter(q url.Values) (models.TaskFilter, error) {
	var filter models.TaskFilter
	var fields []apperrors.FieldError

	parseID := func(key string) *uuid.UUID {
		raw := q.Get(key)
		if raw == "" {
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: key, Message: "Invalid ID format"})
			return nil
		}
		return &id
	}
	filter.SectionID = parseID("section_id")
	filter.AssigneeID = parseID("assignee_id")
	if raw := q.Get("status"); raw != "" {
		status := models.TaskStatus(raw)
		filter.Status = &status
	}
	filter.Search = q.Get("search")

	if len(fields) > 0 {
		return filter, apperrors.Validation(fields...)
	}
	return filter, nil
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	task, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	task, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) AddAssignee(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.AssignRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	assignee, err := h.service.AddAssignee(r.Context(), userID, id, req)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, assignee)
}

func (h *TaskHandler) RemoveAssignee(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	assigneeID, err := pathUUID(r, "userId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.RemoveAssignee(r.Context(), userID, id, assigneeID); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Assignee removed successfully")
}

func (h *TaskHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req models.DependencyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.AddDependency(r.Context(), userID, id, req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusCreated, "Dependency added successfully")
}

func (h *TaskHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	dependsOnID, err := pathUUID(r, "dependsOnId")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.service.RemoveDependency(r.Context(), userID, id, dependsOnID); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.Message(w, http.StatusOK, "Dependency removed successfully")
}
