package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/reports"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/config"
	"hrflow/internal/platform/jobs"
	"hrflow/internal/platform/logger"
	"hrflow/internal/platform/metrics"
	"hrflow/internal/platform/seed"
	"hrflow/internal/transport/http/api"
	audithandler "hrflow/internal/transport/http/handlers/audit"
	notificationshandler "hrflow/internal/transport/http/handlers/notifications"
	policieshandler "hrflow/internal/transport/http/handlers/policies"
	requestshandler "hrflow/internal/transport/http/handlers/requests"
	"hrflow/internal/transport/http/middleware"
)

// App holds the wired services behind the HTTP router.
type App struct {
	Config        config.Config
	Stores        *Stores
	Policies      *policy.Service
	Requests      *requests.Service
	Audit         *audit.Service
	Notifications *notifications.Service
	Reports       *reports.Service
	Jobs          *jobs.Service
	Metrics       *metrics.Collector
}

// NewApp builds services on top of stores.
func NewApp(cfg config.Config, stores *Stores) *App {
	policies := policy.NewService(stores.Policies)
	profiles := employee.NewService(stores.Employees)
	requestsSvc := requests.NewService(stores.Requests, profiles, policies, cfg.TxTimeout)
	return &App{
		Config:        cfg,
		Stores:        stores,
		Policies:      policies,
		Requests:      requestsSvc,
		Audit:         audit.New(stores.Audit),
		Notifications: notifications.New(stores.Notifications),
		Reports:       reports.NewService(requestsSvc),
		Jobs:          jobs.New(0),
		Metrics:       metrics.New(),
	}
}

// Seed loads the configured fixture file, if any.
func (a *App) Seed(ctx context.Context) error {
	if a.Config.SeedFile == "" {
		return nil
	}
	fixture, err := seed.LoadFile(a.Config.SeedFile)
	if err != nil {
		return err
	}
	_, err = seed.Apply(ctx, fixture, a.Stores.Seed, a.Policies)
	return err
}

// Router returns the full HTTP surface.
func (a *App) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.Config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "jwt-token"},
		ExposedHeaders: []string{"X-Request-ID", "X-Total-Count"},
		MaxAge:         300,
	}))
	router.Use(middleware.SecureHeaders(a.Config.Environment == "production"))
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
	router.Use(middleware.Metrics(a.Metrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Stores.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(a.Config.AuthSecret))

		requestshandler.NewHandler(a.Requests, a.Reports, a.Audit, a.Notifications, a.Jobs, a.Metrics).RegisterRoutes(r)
		policieshandler.NewHandler(a.Policies, a.Requests, a.Audit).RegisterRoutes(r)
		audithandler.NewHandler(a.Audit).RegisterRoutes(r)
		notificationshandler.NewHandler(a.Notifications).RegisterRoutes(r)
	})

	return router
}

func Run() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Environment)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store setup failed")
	}
	defer stores.Close()

	app := NewApp(cfg, stores)
	if err := app.Seed(ctx); err != nil {
		log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seed failed")
	}

	app.Jobs.Start(ctx)
	defer app.Jobs.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.StoreDriver).Msg("hrflow server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
