package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tahfidz-import/internal/config"
	"github.com/JonMunkholm/tahfidz-import/internal/core"
	"github.com/JonMunkholm/tahfidz-import/internal/database"
	"github.com/JonMunkholm/tahfidz-import/internal/logging"
	"github.com/JonMunkholm/tahfidz-import/internal/portal"
	"github.com/JonMunkholm/tahfidz-import/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"portal", cfg.Portal.BaseURL,
		"submit_max_concurrent", cfg.Import.MaxConcurrent,
		"session_ttl", cfg.Import.SessionTTL,
		"audit_enabled", cfg.Database.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Audit history is optional; without a database submits are only logged.
	var audit core.AuditRecorder
	if cfg.Database.Enabled() {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slog.Info("connected to database", "name", database.Name(cfg.Database.URL))

		store := database.NewAuditStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		audit = store
	}

	client := portal.New(portal.Options{
		BaseURL: cfg.Portal.BaseURL,
		Token:   cfg.Portal.Token,
		Timeout: cfg.Portal.Timeout,
		Paths: map[string]string{
			core.KindStudents: cfg.Portal.StudentPath,
			core.KindTeachers: cfg.Portal.TeacherPath,
		},
	})

	service := core.NewService(client, audit, core.Options{
		PreviewRows:       cfg.Import.PreviewRows,
		SessionTTL:        cfg.Import.SessionTTL,
		AutoCreateAccount: cfg.Import.AutoCreateAccount,
		MaxConcurrent:     cfg.Import.MaxConcurrent,
		MaxWait:           cfg.Import.MaxWaitTime,
	})

	for _, kind := range service.Kinds() {
		slog.Debug("import kind registered", "kind", kind.Key, "endpoint", client.Endpoint(kind))
	}

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.RunJanitor(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight batches so no submit is cut off mid-request
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
