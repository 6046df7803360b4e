package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericfisherdev/logingate/internal/adapter/driven/memory"
	"github.com/ericfisherdev/logingate/internal/adapter/driven/registry"
	sqliteadapter "github.com/ericfisherdev/logingate/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/logingate/internal/adapter/driving/http"
	"github.com/ericfisherdev/logingate/internal/config"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"db_path", cfg.DBPath,
		"extensions_file", cfg.ExtensionsFile,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load installed extensions.
	reg, err := registry.Load(cfg.ExtensionsFile)
	if err != nil {
		return err
	}
	callers, err := reg.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range callers {
		slog.Info("extension registered", "id", c.ExtensionID, "uuid", c.InstanceID, "host_permissions", len(c.Hosts))
	}

	// 4. Open the login store.
	var store driven.LoginStore
	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewLoginStore()
		slog.Warn("using in-memory login store, logins are lost on exit")
	default:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", db.Path())

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		version, dirty, err := sqliteadapter.SchemaVersion(db.Writer)
		if err != nil {
			return err
		}
		slog.Info("migrations complete", "schema_version", version, "dirty", dirty)

		store = sqliteadapter.NewLoginRepo(db)
	}

	// 5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(store, reg, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("logingate started", "listen_addr", cfg.ListenAddr, "extensions", len(callers))

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 7. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
