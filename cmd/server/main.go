package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/check"
	"github.com/JonMunkholm/tabcheck/internal/config"
	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/database"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/scan"
	"github.com/JonMunkholm/tabcheck/internal/source"
	"github.com/JonMunkholm/tabcheck/internal/storage"
	"github.com/JonMunkholm/tabcheck/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"update_mode", cfg.Validation.UpdateMode,
		"max_concurrent_runs", cfg.Validation.MaxConcurrent,
		"storage_backend", cfg.Storage.Backend,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if err := database.Migrate(ctx, pool); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	uploads, err := storage.New(storage.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
		S3: storage.S3Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			Bucket:    cfg.Storage.S3Bucket,
			UseSSL:    cfg.Storage.S3UseSSL,
		},
	})
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	// The catalog is optional: without it runs see every dataset as public
	// and no resource is patched.
	var cat catalog.Client
	if cfg.Catalog.URL != "" {
		client, err := catalog.NewHTTPClient(catalog.HTTPConfig{
			BaseURL:     cfg.Catalog.URL,
			APIKey:      cfg.Catalog.APIKey,
			SiteUserTTL: cfg.Catalog.SiteUserTTL,
			Timeout:     cfg.Catalog.Timeout,
		})
		if err != nil {
			slog.Error("failed to create catalog client", "error", err)
			os.Exit(1)
		}
		cat = client
	} else {
		slog.Warn("CATALOG_URL not set, resources will not be patched")
	}

	resolver, err := source.NewResolver(source.Config{
		Proxy:           cfg.Validation.DownloadProxy,
		PassAuthHeader:  cfg.Validation.PassAuthHeader,
		AuthHeaderValue: cfg.Validation.PassAuthHeaderValue,
		Timeout:         cfg.Validation.FetchTimeout,
	}, uploads, cat)
	if err != nil {
		slog.Error("failed to create source resolver", "error", err)
		os.Exit(1)
	}

	defaults, err := scan.LoadDefaults(cfg.Validation.DefaultOptions, cfg.Validation.OptionsFile)
	if err != nil {
		slog.Error("invalid default validation options", "error", err)
		os.Exit(1)
	}

	registry := check.Default()
	slog.Info("checks registered", "checks", registry.IDs())

	scanner := scan.NewScanner(registry, resolver, defaults, cfg.Validation.FetchMaxBytes)

	mode, err := core.ParseUpdateMode(cfg.Validation.UpdateMode)
	if err != nil {
		slog.Error("invalid update mode", "error", err)
		os.Exit(1)
	}
	service := core.NewService(core.NewPGStore(pool), scanner, cat, mode)

	// Background runs outlive their request but not the process
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	limiter := core.NewRunLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime)
	dispatcher := core.NewDispatcher(jobCtx, service, limiter)

	server := web.NewServer(cfg, web.Deps{
		Service:    service,
		Dispatcher: dispatcher,
		Uploads:    uploads,
		Checks:     registry.IDs(),
	})

	go service.StartStatusReporter(jobCtx, cfg.Validation.StatusReportInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop taking requests first, then let running validations finish
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if status := dispatcher.Status(); status.Active > 0 {
			slog.Info("waiting for validation runs to complete", "active", status.Active)
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			slog.Warn("validation runs did not complete in time", "error", err)
		} else {
			slog.Info("all validation runs completed")
		}

		cancelJobs()
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
}
