package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/TaskForge/internal/adapter/directory"
	tfhttp "github.com/Strob0t/TaskForge/internal/adapter/http"
	tfnats "github.com/Strob0t/TaskForge/internal/adapter/nats"
	"github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/adapter/postgres"
	"github.com/Strob0t/TaskForge/internal/adapter/ristretto"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/logger"
	"github.com/Strob0t/TaskForge/internal/middleware"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
	"github.com/Strob0t/TaskForge/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"history_level", cfg.Engine.HistoryLevel,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	// Run migrations
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// Metrics
	shutdownMetrics, err := otel.SetupMetrics(ctx, cfg.Metrics, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownMetrics(shutdownCtx)
	}()

	var metrics *otel.Metrics
	if cfg.Metrics.Enabled {
		metrics, err = otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metric instruments: %w", err)
		}
	}

	// NATS. Task lifecycle events are best-effort; the engine runs
	// without a broker when no URL is configured.
	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		nq, err := tfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = nq.Close() }()
		queue = nq
	} else {
		slog.Warn("nats url empty, task events disabled")
	}

	// Group directory with a ristretto cache in front.
	groupCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer groupCache.Close()
	dir := directory.NewCached(directory.NewStatic(), groupCache, cfg.Cache.GroupTTL)

	// --- Services ---
	store := postgres.NewStore(pool)
	clk := clock.System{}
	cmd := service.NewCommands(store, metrics, log)
	rec := service.NewRecorder(history.ParseLevel(cfg.Engine.HistoryLevel), clk)

	taskSvc := service.NewTaskService(cmd, store, rec, queue, clk, cfg.Engine, log)
	varSvc := service.NewVariableService(cmd, store, clk)
	linkSvc := service.NewLinkService(cmd, store, rec, taskSvc, clk)
	histSvc := service.NewHistoryService(cmd, store, rec, clk)
	querySvc := service.NewQueryService(store, dir, expr.NewSandboxed(), clk, cfg.Engine, metrics, log)
	filterSvc := service.NewFilterService(cmd, store, querySvc, clk)

	// --- HTTP ---
	handlers := tfhttp.NewHandlers(taskSvc, varSvc, linkSvc, histSvc, querySvc, filterSvc)

	r := chi.NewRouter()

	// Middleware
	r.Use(tfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(tfhttp.SecurityHeaders)
	r.Use(tfhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.Authentication)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Health endpoint with service status
	r.Get("/health", healthHandler(cfg, pool, queue))

	// API routes
	tfhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// healthHandler returns an http.HandlerFunc that reports component health.
func healthHandler(cfg *config.Config, pool pinger, queue messagequeue.Queue) http.HandlerFunc {
	type healthStatus struct {
		Status   string `json:"status"`
		Postgres string `json:"postgres"`
		NATS     string `json:"nats"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Postgres: "ok", NATS: "disabled"}

		if err := pool.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			status.Postgres = err.Error()
		}
		if queue != nil {
			status.NATS = cfg.NATS.URL
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}
