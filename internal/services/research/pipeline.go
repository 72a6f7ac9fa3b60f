// -----------------------------------------------------------------------
// Research Pipeline - one generation call per distinct unit, failures isolated
// -----------------------------------------------------------------------

package research

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// Pipeline turns a deduplicated unit list into a ResultSet, calling
// the content provider exactly once per unit.
type Pipeline struct {
	provider  interfaces.ContentProvider
	artifacts *ArtifactWriter
	logger    arbor.ILogger
	now       func() time.Time
}

// NewPipeline creates a research pipeline
func NewPipeline(provider interfaces.ContentProvider, artifacts *ArtifactWriter, logger arbor.ILogger) *Pipeline {
	return &Pipeline{
		provider:  provider,
		artifacts: artifacts,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateUnits researches each unit in order. A failed unit is logged
// and counted on the outcome but never aborts the run or triggers a
// retry; it is simply absent from the returned set. Successful reports
// are persisted to the reports directory before being recorded.
func (p *Pipeline) GenerateUnits(ctx context.Context, units []models.ResearchUnit, outcome *models.RunOutcome) *ResultSet {
	results := NewResultSet()

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			p.logger.Warn().Err(err).Msg("Research run cancelled, stopping unit generation")
			break
		}

		p.logger.Info().
			Str("kind", string(unit.Kind)).
			Str("name", unit.Name).
			Msg("Researching unit")

		content, err := p.provider.Generate(ctx, UnitPrompt(unit, p.now()), interfaces.GenerateOptions{
			EnableSearch: true,
		})
		if err != nil {
			p.logger.Error().Err(err).Str("unit", unit.String()).Msg("❌ Unit research failed")
			outcome.UnitFailed(unit, err)
			continue
		}
		if content == "" {
			p.logger.Warn().Str("unit", unit.String()).Msg("Unit research returned no content, skipping")
			continue
		}

		if p.artifacts != nil {
			if path, err := p.artifacts.Write(unit, content, p.now()); err != nil {
				p.logger.Warn().Err(err).Str("unit", unit.String()).Msg("Failed to persist report file")
			} else {
				p.logger.Debug().Str("path", path).Msg("Report file written")
			}
		}

		results.Put(unit, content)
		outcome.UnitGenerated(unit)
		p.logger.Info().Str("unit", unit.String()).Msg("✅ Unit research complete")
	}

	return results
}
