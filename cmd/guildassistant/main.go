package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sglre6355/guildassistant/internal/bot"
	_ "github.com/sglre6355/guildassistant/internal/modules/catalog"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/guildassistant
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := bot.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := bot.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting guildassistant",
		zap.String("version", version),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("path", cfg.InteractionsPath),
	)

	b := bot.NewBot(cfg, logger)
	b.LoadModules()

	if err := b.Start(); err != nil {
		logger.Error("failed to start bot", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("received termination signal, shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := b.Stop(ctx); err != nil {
		logger.Error("failed to shutdown", zap.Error(err))
	}

	logger.Info("completed bot shutdown")
}
