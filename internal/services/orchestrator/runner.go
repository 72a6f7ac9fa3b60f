// -----------------------------------------------------------------------
// Orchestrator - broadcast and single-subscriber digest runs
// -----------------------------------------------------------------------

package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
	"github.com/stockbrief/stockbrief/internal/services/digest"
	"github.com/stockbrief/stockbrief/internal/services/research"
)

// Runner drives one digest run end to end: collect targets, research
// each distinct unit once, then compose and deliver per subscriber.
// Broadcast and single-subscriber runs share the same tail, so a
// single-subscriber send is exactly a broadcast over one subscriber.
type Runner struct {
	subscribers interfaces.SubscriberStorage
	pipeline    *research.Pipeline
	synthesizer *research.Synthesizer
	composer    *digest.Composer
	deliverer   interfaces.Deliverer
	logger      arbor.ILogger
}

// NewRunner creates a digest runner
func NewRunner(
	subscribers interfaces.SubscriberStorage,
	pipeline *research.Pipeline,
	synthesizer *research.Synthesizer,
	composer *digest.Composer,
	deliverer interfaces.Deliverer,
	logger arbor.ILogger,
) *Runner {
	return &Runner{
		subscribers: subscribers,
		pipeline:    pipeline,
		synthesizer: synthesizer,
		composer:    composer,
		deliverer:   deliverer,
		logger:      logger,
	}
}

// RunBroadcast researches the union of all active subscribers'
// watchlists and sends each active subscriber a personalized digest.
// An empty target union or an all-failed research phase ends the run
// cleanly without touching any subscriber.
func (r *Runner) RunBroadcast(ctx context.Context) (*models.RunOutcome, error) {
	outcome := models.NewRunOutcome("broadcast")

	active, err := r.subscribers.ListActive(ctx)
	if err != nil {
		return outcome, fmt.Errorf("failed to list active subscribers: %w", err)
	}

	units := research.CollectUnits(active)
	outcome.UnitsRequested = len(units)

	r.logger.Info().
		Int("subscribers", len(active)).
		Int("units", len(units)).
		Msg("🚀 Broadcast run starting")

	if len(units) == 0 {
		r.logger.Warn().Msg("No watchlist entries across active subscribers, nothing to do")
		return outcome, nil
	}

	news := r.synthesizer.NewsDigest(ctx)

	results := r.pipeline.GenerateUnits(ctx, units, outcome)
	if results.Len() == 0 {
		r.logger.Warn().Msg("No research results, ending run")
		return outcome, nil
	}

	for _, sub := range active {
		r.processSubscriber(ctx, sub, results, news, outcome)
	}

	snap := outcome.Snapshot()
	r.logger.Info().
		Int("generated", snap.UnitsGenerated).
		Int("failed", snap.UnitsFailed).
		Int("dispatched", snap.Dispatched).
		Int("skipped", snap.Skipped).
		Int("delivery_failures", snap.DeliveryFailures).
		Msg("📈 Broadcast run complete")

	return outcome, nil
}

// RunSubscriber runs the full pipeline for exactly one subscriber,
// active or not. An unknown ID is a fatal error; an empty watchlist
// ends the run cleanly.
func (r *Runner) RunSubscriber(ctx context.Context, id string) (*models.RunOutcome, error) {
	outcome := models.NewRunOutcome("single")

	sub, err := r.subscribers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			return outcome, fmt.Errorf("subscriber %s: %w", id, err)
		}
		return outcome, fmt.Errorf("failed to load subscriber %s: %w", id, err)
	}

	r.logger.Info().
		Str("subscriber", sub.Name).
		Msg("🚀 Single-subscriber run starting")

	if !sub.HasWatchlist() {
		r.logger.Warn().Str("subscriber", sub.Name).Msg("Empty watchlist, nothing to do")
		return outcome, nil
	}

	units := models.UnitsFor(sub)
	outcome.UnitsRequested = len(units)

	news := r.synthesizer.NewsDigest(ctx)

	results := r.pipeline.GenerateUnits(ctx, units, outcome)
	if results.Len() == 0 {
		r.logger.Warn().Msg("No research results, ending run")
		return outcome, nil
	}

	r.processSubscriber(ctx, sub, results, news, outcome)

	snap := outcome.Snapshot()
	r.logger.Info().
		Int("generated", snap.UnitsGenerated).
		Int("failed", snap.UnitsFailed).
		Int("dispatched", snap.Dispatched).
		Msg("📈 Single-subscriber run complete")

	return outcome, nil
}

// processSubscriber composes and delivers one subscriber's digest.
// Subscribers with no usable card are skipped before any synthesis
// call is spent on them.
func (r *Runner) processSubscriber(ctx context.Context, sub *models.Subscriber, results *research.ResultSet, news string, outcome *models.RunOutcome) {
	units := models.UnitsFor(sub)

	if !results.HasAnyOf(units) {
		r.logger.Warn().Str("subscriber", sub.Name).Msg("No results for subscriber's watchlist, skipping")
		outcome.SubscriberSkipped(sub, "no usable research cards")
		return
	}

	shared := r.synthesizer.SubscriberContext(ctx, units, news)

	d, err := r.composer.Compose(sub, results, shared)
	if err != nil {
		if errors.Is(err, digest.ErrNoCards) {
			outcome.SubscriberSkipped(sub, "no usable research cards")
			return
		}
		r.logger.Error().Err(err).Str("subscriber", sub.Name).Msg("Failed to compose digest")
		outcome.DeliveryFailed(sub, err)
		return
	}

	if err := r.deliverer.Deliver(ctx, d); err != nil {
		outcome.DeliveryFailed(sub, err)
		return
	}

	outcome.SubscriberDispatched(sub, d.CardCount)
}
