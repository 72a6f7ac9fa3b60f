package research

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// Fallback lines used when a synthesis call fails. The digest still
// goes out; the failed section degrades to a visible placeholder.
const (
	newsFallback      = "- Unable to retrieve the market news digest."
	overviewFallback  = "- Unable to retrieve the portfolio summary."
	riskFallback      = "- Unable to retrieve risk information."
	timeframeFallback = "- Unable to retrieve the timeframe analysis."
)

// Synthesizer produces the shared digest sections: the run-scoped news
// summary and the per-subscriber portfolio overview, risk, and
// timeframe sections.
type Synthesizer struct {
	provider interfaces.ContentProvider
	logger   arbor.ILogger
	now      func() time.Time
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(provider interfaces.ContentProvider, logger arbor.ILogger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// NewsDigest generates the market direction and sentiment section.
// Computed once per run and shared by every digest in it.
func (s *Synthesizer) NewsDigest(ctx context.Context) string {
	s.logger.Info().Msg("Collecting market news digest")
	content, err := s.provider.Generate(ctx, NewsPrompt(s.now()), interfaces.GenerateOptions{EnableSearch: true})
	if err != nil || content == "" {
		s.logger.Warn().Err(err).Msg("News digest failed, using fallback")
		return newsFallback
	}
	s.logger.Info().Msg("✅ News digest complete")
	return content
}

// SubscriberContext generates the three subscriber-scoped sections for
// the given watchlist units, attaching the already computed news
// section. Each failed section falls back independently.
func (s *Synthesizer) SubscriberContext(ctx context.Context, units []models.ResearchUnit, news string) models.SharedContext {
	shared := models.SharedContext{News: news}

	s.logger.Info().Int("units", len(units)).Msg("Collecting portfolio overview")
	overview, err := s.provider.Generate(ctx, OverviewPrompt(units, s.now()), interfaces.GenerateOptions{EnableSearch: true})
	if err != nil || overview == "" {
		s.logger.Warn().Err(err).Msg("Portfolio overview failed, using fallback")
		overview = overviewFallback
	}
	shared.Overview = overview

	s.logger.Info().Msg("Collecting portfolio risk")
	risk, err := s.provider.Generate(ctx, RiskPrompt(units, s.now()), interfaces.GenerateOptions{EnableSearch: true})
	if err != nil || risk == "" {
		s.logger.Warn().Err(err).Msg("Portfolio risk failed, using fallback")
		risk = riskFallback
	}
	shared.Risk = risk

	s.logger.Info().Msg("Collecting timeframe analysis")
	timeframe, err := s.provider.Generate(ctx, TimeframePrompt(units, s.now()), interfaces.GenerateOptions{EnableSearch: true})
	if err != nil || timeframe == "" {
		s.logger.Warn().Err(err).Msg("Timeframe analysis failed, using fallback")
		timeframe = timeframeFallback
	}
	shared.Timeframe = timeframe

	return shared
}
