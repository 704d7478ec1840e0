package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"transaksi/internal/amqp"
	"transaksi/internal/backend"
	"transaksi/internal/cli"
	"transaksi/internal/config"
	"transaksi/internal/display"
	"transaksi/internal/ledger"
	applog "transaksi/internal/log"
	"transaksi/internal/worker"
)

func main() {
	backendFlag := flag.String("backend", "", "data backend (remote, sqlite or memory); overrides DATA_BACKEND")
	flag.Parse()

	cli.LoadEnvFile()
	// Logs go to stderr so the ledger output stays readable.
	bootLogger := cli.SetupLogger(nil, os.Stderr, applog.ComponentConsole)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	if *backendFlag != "" {
		cfg.DataBackend = *backendFlag
		if err := cfg.Validate(); err != nil {
			bootLogger.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}
	}
	logger := cli.SetupLogger(cfg, os.Stderr, applog.ComponentConsole)

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

	ctl := ledger.New(result.Backend,
		ledger.WithTimeout(cfg.LedgerTimeout),
		ledger.WithLogger(logger),
	)

	parent, stop := context.WithCancel(context.Background())
	defer stop()
	ctx, done := cli.GracefulShutdown(parent, logger, 5*time.Second, func(context.Context) {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	if cfg.AMQPURL != "" {
		go watchChanges(ctx, cfg, ctl, logger)
	}

	con := newConsole(ctl, display.New(cfg.LanguageTag()), os.Stdin, os.Stdout, time.Now)
	errc := make(chan error, 1)
	go func() { errc <- con.run(ctx) }()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("Console input error", "error", err)
		}
		stop()
	case <-ctx.Done():
	}
	cli.WaitForShutdown(ctx, done)
}

// watchChanges refreshes the view whenever another client changes a
// transaction.
func watchChanges(ctx context.Context, cfg *config.Config, ctl *ledger.Controller, logger *slog.Logger) {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Change notifications disabled", "error", err)
		return
	}
	defer client.Close()

	if err := worker.NewRefreshWorker(client, ctl, logger).Run(ctx); err != nil {
		logger.Warn("Change consumer stopped", "error", err)
	}
}
