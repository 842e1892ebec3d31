package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/drafts"
	"ems/internal/domain/notifications"
	"ems/internal/domain/webhooks"
	"ems/internal/platform/config"
	"ems/internal/platform/crypto"
	"ems/internal/platform/db"
	"ems/internal/platform/email"
	"ems/internal/platform/jobs"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	audithandler "ems/internal/transport/http/handlers/audit"
	draftshandler "ems/internal/transport/http/handlers/drafts"
	notificationshandler "ems/internal/transport/http/handlers/notifications"
	profilehandler "ems/internal/transport/http/handlers/profile"
	webhookshandler "ems/internal/transport/http/handlers/webhooks"
	"ems/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

// Database is what the router needs from the connection pool.
type Database interface {
	db.Querier
	Ping(ctx context.Context) error
}

type App struct {
	Config  config.Config
	DB      *db.Pool
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to Postgres, applies migrations and the seed when configured,
// and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	collector := metrics.New()
	queue := jobs.New(pool, cfg.JobQueueSize)
	router, err := NewRouter(cfg, pool, collector, queue)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{Config: cfg, DB: pool, Jobs: queue, Metrics: collector, Router: router}, nil
}

// NewRouter wires stores, services and handlers on top of database.
func NewRouter(cfg config.Config, database Database, collector *metrics.Collector, queue *jobs.Service) (http.Handler, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("data encryption key: %w", err)
	}
	if !sealer.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, webhook secrets are stored unencrypted")
	}

	authStore := auth.NewStore(database)
	auditService := audit.New(database)

	notificationService := notifications.New(notifications.NewStore(database), email.New(cfg), cfg.EmailFrom)
	notifier := notifications.NewDraftNotifier(notificationService, authStore, auth.PermDraftsReview)

	webhookStore := webhooks.NewStore(database)
	dispatcher := webhooks.NewDispatcher(webhookStore, sealer, queue, cfg.WebhookTimeout, cfg.WebhookMaxRetries)
	dispatcher.Recorder = collector

	manager := drafts.NewManager(drafts.NewStore(database), drafts.Publishers{
		notifier,
		dispatcher,
		drafts.PublisherFunc(func(ctx context.Context, evt drafts.Event) error {
			collector.RecordDraftEvent(evt.Type)
			return nil
		}),
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		profilehandler.NewHandler(manager, authStore).RegisterRoutes(r)
		draftshandler.NewHandler(manager, auditService, authStore).RegisterRoutes(r)
		webhookshandler.NewHandler(webhooks.NewService(webhookStore, sealer), auditService, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationService, authStore).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)
	})

	return router, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// background jobs.
func (a *App) Run(ctx context.Context) error {
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	a.Jobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ems server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown failed", "err", err)
	}
	stopJobs()
	a.Jobs.Wait()
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
