// -----------------------------------------------------------------------
// Application wiring - shared by run and serve modes
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/services/digest"
	"github.com/stockbrief/stockbrief/internal/services/llm"
	"github.com/stockbrief/stockbrief/internal/services/mailer"
	"github.com/stockbrief/stockbrief/internal/services/orchestrator"
	"github.com/stockbrief/stockbrief/internal/services/research"
	"github.com/stockbrief/stockbrief/internal/storage/badger"
)

// App holds the components every mode needs: storage, mail delivery,
// and configuration. The research stack is built separately because
// serve mode never calls an LLM itself - scheduled sends run in a
// detached child process.
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager *badger.Manager
	MailerService  *mailer.Service

	llmService *llm.Service
}

// New initializes storage and delivery components
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	manager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = manager

	if err := manager.SeedDefaults(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default key/value entries")
	}

	app.MailerService = mailer.NewService(manager.KeyValueStorage(), &cfg.SMTP, logger)

	return app, nil
}

// SubscriberStorage exposes subscriber persistence
func (a *App) SubscriberStorage() interfaces.SubscriberStorage {
	return a.StorageManager.SubscriberStorage()
}

// KeyValueStorage exposes the settings store
func (a *App) KeyValueStorage() interfaces.KeyValueStorage {
	return a.StorageManager.KeyValueStorage()
}

// BuildRunner assembles the research and digest pipeline. It fails up
// front when no LLM credential can be resolved, before any subscriber
// is touched.
func (a *App) BuildRunner(ctx context.Context) (*orchestrator.Runner, error) {
	llmService, err := llm.NewService(ctx, a.Config, a.KeyValueStorage(), a.Logger)
	if err != nil {
		return nil, err
	}
	a.llmService = llmService

	artifacts, err := research.NewArtifactWriter(a.Config.Reports.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare reports directory: %w", err)
	}

	pipeline := research.NewPipeline(llmService, artifacts, a.Logger)
	synthesizer := research.NewSynthesizer(llmService, a.Logger)
	composer := digest.NewComposer(&a.Config.Digest)

	return orchestrator.NewRunner(
		a.SubscriberStorage(),
		pipeline,
		synthesizer,
		composer,
		a.MailerService,
		a.Logger,
	), nil
}

// Close releases storage and provider resources
func (a *App) Close() error {
	if a.llmService != nil {
		if err := a.llmService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
