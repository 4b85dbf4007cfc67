package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/middleware"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Auth          *services.AuthService
	Workspaces    *services.WorkspaceService
	Projects      *services.ProjectService
	Sections      *services.SectionService
	Tasks         *services.TaskService
	Comments      *services.CommentService
	Attachments   *services.AttachmentService
	Notifications *services.NotificationService
	Publisher     events.Publisher
}

type RouterConfig struct {
	Version       string
	CORSOrigin    string
	UploadsDir    string
	StaticDir     string
	MaxUploadSize int64
	ExposeErrors  bool
}

// NewRouter wires every REST route, the realtime feed, uploads and the
// optional single-page frontend.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	resp := &Responder{ExposeErrors: cfg.ExposeErrors}

	authHandler := NewAuthHandler(svc.Auth, resp)
	workspaceHandler := NewWorkspaceHandler(svc.Workspaces, resp)
	projectHandler := NewProjectHandler(svc.Projects, resp)
	sectionHandler := NewSectionHandler(svc.Sections, resp)
	taskHandler := NewTaskHandler(svc.Tasks, resp)
	commentHandler := NewCommentHandler(svc.Comments, resp)
	attachmentHandler := NewAttachmentHandler(svc.Attachments, resp, cfg.MaxUploadSize)
	notificationHandler := NewNotificationHandler(svc.Notifications, resp)
	eventsHandler := NewEventsHandler(svc.Projects, svc.Publisher, resp, cfg.CORSOrigin)
	serviceHandler := &ServiceHandler{resp: resp, version: cfg.Version, started: time.Now()}

	r := mux.NewRouter()
	r.Use(middleware.Recover(cfg.ExposeErrors), middleware.RequestLogger)

	r.HandleFunc("/health", serviceHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/api", serviceHandler.Index).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuth(svc.Auth))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)

	protected.HandleFunc("/workspaces", workspaceHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces", workspaceHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{id}", workspaceHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{id}", workspaceHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/workspaces/{id}", workspaceHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/workspaces/{id}/members", workspaceHandler.AddMember).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{id}/members/{userId}", workspaceHandler.RemoveMember).Methods(http.MethodDelete)

	protected.HandleFunc("/projects/workspace/{workspaceId}", projectHandler.ListByWorkspace).Methods(http.MethodGet)
	protected.HandleFunc("/projects", projectHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id}", projectHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}", projectHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/projects/{id}", projectHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{id}/members", projectHandler.AddMember).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id}/members/{userId}", projectHandler.RemoveMember).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{id}/activity", projectHandler.Activity).Methods(http.MethodGet)
	protected.Handle("/projects/{id}/events", eventsHandler).Methods(http.MethodGet)

	protected.HandleFunc("/sections/project/{projectId}", sectionHandler.ListByProject).Methods(http.MethodGet)
	protected.HandleFunc("/sections", sectionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/sections/{id}", sectionHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/sections/{id}", sectionHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks/project/{projectId}", taskHandler.ListByProject).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", taskHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}", taskHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", taskHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", taskHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{id}/assignees", taskHandler.AddAssignee).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/assignees/{userId}", taskHandler.RemoveAssignee).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{id}/dependencies", taskHandler.AddDependency).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/dependencies/{dependsOnId}", taskHandler.RemoveDependency).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{id}/attachments", attachmentHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/attachments/{id}", attachmentHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/comments/task/{taskId}", commentHandler.ListByTask).Methods(http.MethodGet)
	protected.HandleFunc("/comments", commentHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/comments/{id}", commentHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/comments/{id}", commentHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id}", notificationHandler.Delete).Methods(http.MethodDelete)

	if cfg.UploadsDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp.JSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})
	r.MethodNotAllowedHandler = notFound
	if cfg.StaticDir != "" {
		r.NotFoundHandler = spaHandler(cfg.StaticDir, notFound)
	} else {
		r.NotFoundHandler = notFound
	}

	return middleware.EnableCORS(cfg.CORSOrigin)(r)
}

// spaHandler serves files from dir and falls back to index.html for
// client-side routes. API paths always get the JSON 404.
func spaHandler(dir string, notFound http.Handler) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" || r.Method != http.MethodGet {
			notFound.ServeHTTP(w, r)
			return
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			notFound.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
