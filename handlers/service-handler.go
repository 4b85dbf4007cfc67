package handlers

import (
	"net/http"
	"time"
)

// ServiceHandler answers the unauthenticated health and index endpoints.
type ServiceHandler struct {
	resp    *Responder
	version string
	started time.Time
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.resp.JSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "Asana Clone API is running",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *ServiceHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.resp.JSON(w, http.StatusOK, map[string]any{
		"name":    "Asana Clone API",
		"version": h.version,
		"endpoints": map[string]string{
			"auth":          "/api/auth",
			"workspaces":    "/api/workspaces",
			"projects":      "/api/projects",
			"sections":      "/api/sections",
			"tasks":         "/api/tasks",
			"comments":      "/api/comments",
			"attachments":   "/api/attachments",
			"notifications": "/api/notifications",
			"health":        "/health",
		},
	})
}
