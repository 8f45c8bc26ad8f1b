package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ISSNotifier/internal/app"
	"ISSNotifier/internal/config"
	"ISSNotifier/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	logger.Info("ISS overhead notifier started",
		"observer_lat", cfg.Observer.Latitude,
		"observer_lng", cfg.Observer.Longitude,
		"sun_times", cfg.SunTimes.Provider)

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
