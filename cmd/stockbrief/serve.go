package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockbrief/stockbrief/internal/app"
	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/handlers"
	"github.com/stockbrief/stockbrief/internal/server"
	"github.com/stockbrief/stockbrief/internal/services/dispatch"
	"github.com/stockbrief/stockbrief/internal/services/scheduler"
)

// runServe starts the dashboard server and the delivery scheduler.
// Scheduled and on-demand sends are launched as detached child
// processes running the single-subscriber mode, so a slow research run
// never blocks the dashboard.
func runServe(ctx context.Context, application *app.App) int {
	spawner := dispatch.NewSpawner(configFiles, logger)

	schedulerService := scheduler.NewService(application.SubscriberStorage(), spawner, logger)

	// Watchlist edits from the dashboard rebuild the cron table
	onChange := func() {
		if err := schedulerService.Reload(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to reload schedule after subscriber change")
		}
	}

	subscriberHandler := handlers.NewSubscriberHandler(application.SubscriberStorage(), spawner, onChange, logger)
	configHandler := handlers.NewConfigHandler(application.MailerService, logger)
	reportHandler := handlers.NewReportHandler(config.Reports.Dir, logger)

	srv := server.New(config, logger, subscriberHandler, configHandler, reportHandler)

	if err := schedulerService.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start scheduler")
		return 1
	}

	serverErr := make(chan error, 1)
	common.SafeGo(logger, "http-server", func() {
		serverErr <- srv.Start()
	})

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	code := 0
	select {
	case <-sigChan:
		logger.Info().Msg("Interrupt signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("Server failed")
			code = 1
		}
	}

	logger.Info().Msg("Shutting down")

	schedulerService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
	return code
}
