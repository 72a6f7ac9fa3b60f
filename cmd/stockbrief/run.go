package main

import (
	"context"
	"errors"

	"github.com/stockbrief/stockbrief/internal/app"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// runBroadcast researches every active subscriber's watchlist and
// delivers a personalized digest to each. An empty subscriber set or
// an all-failed research phase is a clean no-op, not an error.
func runBroadcast(ctx context.Context, application *app.App) int {
	runner, err := application.BuildRunner(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoCredential) {
			logger.Error().Err(err).Msg("Cannot start run: no LLM credential available")
		} else {
			logger.Error().Err(err).Msg("Failed to build research pipeline")
		}
		return 1
	}

	outcome, err := runner.RunBroadcast(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Broadcast run failed")
		return 1
	}

	logOutcome(outcome)
	return exitCode(outcome)
}

// runSingle delivers one digest to one subscriber, researching only
// that subscriber's watchlist. Scheduled sends arrive here in a
// detached child process.
func runSingle(ctx context.Context, application *app.App, subscriberID string) int {
	runner, err := application.BuildRunner(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoCredential) {
			logger.Error().Err(err).Msg("Cannot start run: no LLM credential available")
		} else {
			logger.Error().Err(err).Msg("Failed to build research pipeline")
		}
		return 1
	}

	outcome, err := runner.RunSubscriber(ctx, subscriberID)
	if err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			logger.Error().Str("subscriber_id", subscriberID).Msg("Unknown subscriber ID")
		} else {
			logger.Error().Err(err).Str("subscriber_id", subscriberID).Msg("Single-subscriber run failed")
		}
		return 1
	}

	logOutcome(outcome)
	return exitCode(outcome)
}

func logOutcome(outcome *models.RunOutcome) {
	snapshot := outcome.Snapshot()
	logger.Info().
		Str("mode", snapshot.Mode).
		Int("units_requested", snapshot.UnitsRequested).
		Int("units_generated", snapshot.UnitsGenerated).
		Int("units_failed", snapshot.UnitsFailed).
		Int("dispatched", snapshot.Dispatched).
		Int("skipped", snapshot.Skipped).
		Int("delivery_failures", snapshot.DeliveryFailures).
		Msg("Run complete")
}

// exitCode maps a finished run to a process exit code. Partial failure
// is still success: some subscribers got their digest. Only a run where
// every attempted delivery failed exits non-zero.
func exitCode(outcome *models.RunOutcome) int {
	snapshot := outcome.Snapshot()
	if snapshot.DeliveryFailures > 0 && snapshot.Dispatched == 0 {
		return 1
	}
	return 0
}
