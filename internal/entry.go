// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/noteservice"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
	pkgconfig "github.com/starford/quire/pkg/config"
)

// App holds the components shared by every command.
type App struct {
	cfg        *Config
	configPath string
	version    string

	level  *slog.LevelVar
	logger *slog.Logger

	store  *storage.FS
	db     *index.DB
	broker *sse.Broker
	svc    *noteservice.Service
}

// Open wires storage, the index, history and the note service. The caller
// must Close the returned App.
func Open(opts ...Option) (*App, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_path", cfg.Notes.Path),
		slog.String("history_dir", cfg.Notes.HistoryDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Duration("merge_window", cfg.History.MergeWindow),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Notes.Path, cfg.Notes.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)

	hist := history.New(store,
		history.WithDir(cfg.Notes.HistoryDir),
		history.WithMergeWindow(cfg.History.MergeWindow),
		history.WithLogger(logger),
	)
	svc := noteservice.New(store, hist,
		noteservice.WithIndex(db),
		noteservice.WithPublisher(broker),
		noteservice.WithLogger(logger),
		noteservice.WithSuppressFuture(cfg.Elements.SuppressFuture),
	)

	return &App{
		cfg:        cfg,
		configPath: app.configPath,
		version:    app.version,
		level:      level,
		logger:     logger,
		store:      store,
		db:         db,
		broker:     broker,
		svc:        svc,
	}, nil
}

// Service returns the note service.
func (a *App) Service() *noteservice.Service { return a.svc }

// Close stops the broker and closes the index.
func (a *App) Close() error {
	a.broker.Close()
	return a.db.Close()
}

// Handler builds the root HTTP handler.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := a.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api", api.NewRouter(a.svc, api.RouterConfig{
		AuthEnabled: a.cfg.Auth.AuthEnabled(),
		Token:       a.cfg.Auth.Token,
		Events:      a.broker,
		Logger:      a.logger,
	}))
	return r
}

// Reload re-reads the config file and applies the settings that can change
// at runtime: the log level and the suppress-future default. Anything else
// needs a restart and is only logged.
func (a *App) Reload() error {
	if a.configPath == "" {
		return fmt.Errorf("reload: no config file")
	}
	next, err := pkgconfig.Reload(a.configPath, NewDefaultConfig)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	a.level.Set(next.App.LogLevel)
	a.svc.SetSuppressFuture(next.Elements.SuppressFuture)

	if next.Notes.Path != a.cfg.Notes.Path || next.SQLite.Path != a.cfg.SQLite.Path ||
		next.App.HTTP.Port != a.cfg.App.HTTP.Port || next.History.MergeWindow != a.cfg.History.MergeWindow {
		a.logger.Warn("reload: storage, index, port and history settings apply after restart")
	}
	a.logger.Info("Configuration reloaded",
		slog.String("log_level", next.App.LogLevel.String()),
		slog.Bool("suppress_future", next.Elements.SuppressFuture))
	return nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := Open(opts...)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Serve(ctx)
}

// Serve runs the HTTP server and the watcher until a shutdown signal.
func (a *App) Serve(ctx context.Context) error {
	logger := a.logger
	httpServer := &http.Server{
		Addr:              a.cfg.App.HTTP.Address(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", a.cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := index.Watch(gCtx, a.db, a.store, logger, a.broker.PublishNoteEvent); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", a.cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle reload and shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(quit)

	loop:
		for {
			select {
			case sig := <-quit:
				if sig == syscall.SIGHUP {
					if err := a.Reload(); err != nil {
						logger.Error("Reload failed", slog.String("error", err.Error()))
					}
					continue
				}
				logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
				break loop
			case <-gCtx.Done():
				logger.Info("Context cancelled, initiating shutdown")
				break loop
			}
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// ServeMCP serves the MCP tools on stdin/stdout.
func (a *App) ServeMCP() error {
	a.logger.Info("MCP server starting on stdio")
	return mcpserver.New(a.svc, a.version).ServeStdio()
}
