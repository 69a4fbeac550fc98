package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"reelcast/internal/config"
	"reelcast/internal/daemon"
	"reelcast/internal/events"
	"reelcast/internal/logging"
	"reelcast/internal/store"
	"reelcast/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// API keys may live in a local .env file instead of the config.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}
	defer st.Close()

	router := events.NewRouter(cfg, logger)
	manager := workflow.NewManager(cfg, st, router, buildAdapters(cfg), logger)

	d, err := daemon.New(cfg, st, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("reelcastd shutting down")
}
