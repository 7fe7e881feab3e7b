// Command liftlogd runs the voice workout ingestion daemon. It loads the
// exercise catalog, opens the ingestion log and serves the HTTP API until
// interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"liftlog/internal/config"
	"liftlog/internal/daemon"
	"liftlog/internal/logging"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (defaults to ~/.config/liftlog/config.toml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	return runDaemon(ctx, cfg, logger)
}

func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return err
	}

	<-ctx.Done()
	logger.Info("liftlogd shutting down")
	return nil
}
