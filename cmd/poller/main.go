package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-json-relay/internal/app"
	"github.com/samvad-hq/samvad-json-relay/internal/config"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "poller start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("poller starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller, err := app.NewPoller(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize poller", "error", err)
		return err
	}

	if err := poller.Run(ctx); err != nil {
		return fmt.Errorf("poller run: %w", err)
	}

	return nil
}
