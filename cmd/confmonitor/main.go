package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ConferenceMonitor/internal/app"
	"ConferenceMonitor/internal/config"
	"ConferenceMonitor/internal/logging"
)

func main() {
	refreshOnce := flag.Bool("refresh", false, "run one refresh cycle and exit")
	purge := flag.Bool("purge", false, "purge elapsed conferences and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *refreshOnce:
		if err := application.RefreshOnce(ctx); err != nil {
			logger.Error("refresh failed", "error", err)
			os.Exit(1)
		}
	case *purge:
		n, err := application.Purge(ctx)
		if err != nil {
			logger.Error("purge failed", "error", err)
			os.Exit(1)
		}
		logger.Info("purge complete", "removed", n)
	default:
		if err := application.Run(ctx); err != nil {
			logger.Error("application stopped", "error", err)
			os.Exit(1)
		}
	}
}
