package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"transaksi/internal/backend"
	"transaksi/internal/cli"
	"transaksi/internal/config"
	apphttp "transaksi/internal/http"
	applog "transaksi/internal/log"
)

func main() {
	backendFlag := flag.String("backend", "", "data backend to serve (sqlite or memory); overrides DATA_BACKEND")
	flag.Parse()

	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(nil, os.Stdout, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, os.Stdout, applog.ComponentApp)

	if *backendFlag != "" {
		cfg.DataBackend = *backendFlag
	}
	// The server is the remote backend, so it only serves local stores.
	if !backend.BackendType(cfg.DataBackend).IsLocal() {
		logger.Warn("Backend cannot be served, falling back to sqlite", "backend", cfg.DataBackend, "db_path", cfg.SQLiteDBPath)
		cfg.DataBackend = config.BackendSQLite
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to create backend config", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, result.Backend,
		apphttp.WithLogger(applog.New(applog.Config{
			Level:     applog.ParseLevel(cfg.LogLevel),
			Format:    cfg.LogFormat,
			Component: applog.ComponentHTTP,
			Output:    os.Stdout,
		})),
		apphttp.WithStoreTimeout(cfg.LedgerTimeout),
	)
	if err != nil {
		logger.Error("Failed to configure HTTP server", "error", err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting transaksi server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
