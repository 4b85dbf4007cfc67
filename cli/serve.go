package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/handlers"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/repositories"
	"github.com/alexander-edwards/asana-clone-app-fullstack/services"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server.

Connects to PostgreSQL (applying migrations unless database.auto_migrate is
false), optionally to MongoDB for the project activity feed and Cassandra
for notifications, then serves the REST API, the realtime project feed,
uploaded files and the optional static frontend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServer(cfg)
		},
	}

	cmd.Flags().IntP("port", "p", 0, "HTTP port (overrides server.port)")
	cmd.Flags().String("static-dir", "", "directory with the built frontend")
	cmd.Flags().String("cors-origin", "", "allowed CORS origin")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.static_dir", cmd.Flags().Lookup("static-dir"))
	_ = viper.BindPFlag("server.cors_origin", cmd.Flags().Lookup("cors-origin"))

	return cmd
}

// stores holds the optional backends so they can be released on shutdown.
type stores struct {
	db            *repositories.DB
	notifications *repositories.NotificationRepo
	activity      *repositories.ActivityRepo
}

func (s *stores) close(ctx context.Context) {
	if s.activity != nil {
		if err := s.activity.Close(ctx); err != nil {
			logging.Logger.Warnf("Event ID: MONGO_CLOSE_FAILED, Description: %v", err)
		}
	}
	if s.notifications != nil {
		s.notifications.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	db, err := repositories.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	st.db = db

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, repositories.MigrateUp); err != nil {
			st.close(ctx)
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	if len(cfg.Cassandra.Hosts) > 0 {
		repo, err := repositories.NewNotificationRepo(cfg.Cassandra)
		if err != nil {
			logging.Logger.Warnf("Event ID: CASSANDRA_UNAVAILABLE, Description: Notifications disabled: %v", err)
		} else if err := repo.CreateTable(); err != nil {
			logging.Logger.Warnf("Event ID: CASSANDRA_SCHEMA_FAILED, Description: Notifications disabled: %v", err)
			repo.Close()
		} else {
			st.notifications = repo
		}
	}

	if cfg.Mongo.URI != "" {
		repo, err := repositories.NewActivityRepo(ctx, cfg.Mongo)
		if err != nil {
			logging.Logger.Warnf("Event ID: MONGO_UNAVAILABLE, Description: Activity feed disabled: %v", err)
		} else {
			st.activity = repo
		}
	}

	return st, nil
}

func buildRouter(cfg *config.Config, st *stores, publisher events.Publisher) http.Handler {
	var notificationStore services.NotificationStore = services.NopNotificationStore{}
	if st.notifications != nil {
		notificationStore = st.notifications
	}
	var activityStore services.ActivityStore = services.NopActivityStore{}
	if st.activity != nil {
		activityStore = st.activity
	}

	users := repositories.NewUserRepository(st.db)
	workspaces := repositories.NewWorkspaceRepository(st.db)
	projects := repositories.NewProjectRepository(st.db)
	sections := repositories.NewSectionRepository(st.db)
	tasks := repositories.NewTaskRepository(st.db)
	comments := repositories.NewCommentRepository(st.db)
	attachments := repositories.NewAttachmentRepository(st.db)

	auth := services.NewAuthorizer(repositories.NewAccessRepository(st.db))
	notifier := services.NewNotificationService(notificationStore, services.NewBreaker("cassandra", cfg.Breaker), cfg.Breaker.CallTimeout)
	activity := services.NewActivityService(activityStore, services.NewBreaker("mongo", cfg.Breaker), cfg.Breaker.CallTimeout)

	svc := handlers.Services{
		Auth:          services.NewAuthService(users, utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)),
		Workspaces:    services.NewWorkspaceService(workspaces, users, auth, notifier),
		Projects:      services.NewProjectService(projects, sections, users, auth, notifier, activity, publisher),
		Sections:      services.NewSectionService(sections, auth, activity, publisher),
		Tasks:         services.NewTaskService(tasks, sections, users, attachments, auth, notifier, activity, publisher),
		Comments:      services.NewCommentService(comments, tasks, auth, notifier, activity, publisher),
		Attachments:   services.NewAttachmentService(attachments, tasks, auth, activity, cfg.Uploads.Dir, cfg.Uploads.MaxSize),
		Notifications: notifier,
		Publisher:     publisher,
	}

	return handlers.NewRouter(svc, handlers.RouterConfig{
		Version:       Version,
		CORSOrigin:    cfg.Server.CORSOrigin,
		UploadsDir:    cfg.Uploads.Dir,
		StaticDir:     cfg.Server.StaticDir,
		MaxUploadSize: cfg.Uploads.MaxSize,
		ExposeErrors:  !cfg.IsProduction(),
	})
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return fmt.Errorf("create uploads directory: %w", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	publisher := events.NewMemoryPublisher()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      buildRouter(cfg, st, publisher),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Event ID: SERVER_START, Description: Server running on port %d (%s)", cfg.Server.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logging.Logger.Infof("Event ID: SERVER_SHUTDOWN, Description: Received %s, shutting down", sig)
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
	publisher.Close()
	st.close(shutdownCtx)

	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server stopped")
	return runErr
}
