// -----------------------------------------------------------------------
// LLM Service - rate-limited content generation behind the provider factory
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
)

// Service implements interfaces.ContentProvider on top of the provider
// factory, adding a request rate limit and a per-call timeout.
type Service struct {
	factory      *ProviderFactory
	provider     ProviderType
	limiter      *rate.Limiter
	timeout      time.Duration
	temperature  float32
	enableSearch bool
	logger       arbor.ILogger
}

// NewService builds the content provider for the configured backend.
// It resolves the API credential immediately: a digest run with no
// usable credential must fail before any subscriber is touched.
func NewService(ctx context.Context, config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Service, error) {
	factory := NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, kvStorage, logger)
	provider := factory.DetectProvider("")

	if _, err := factory.ResolveAPIKey(ctx, provider); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrNoCredential, err)
	}

	var timeoutStr, rateLimitStr string
	switch provider {
	case ProviderClaude:
		timeoutStr = config.Claude.Timeout
		rateLimitStr = config.Claude.RateLimit
	default:
		timeoutStr = config.Gemini.Timeout
		rateLimitStr = config.Gemini.RateLimit
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 5 * time.Minute
	}

	interval, err := time.ParseDuration(rateLimitStr)
	if err != nil || interval <= 0 {
		interval = time.Second
	}

	temperature := config.Gemini.Temperature
	if provider == ProviderClaude {
		temperature = config.Claude.Temperature
	}

	logger.Info().
		Str("provider", string(provider)).
		Str("model", factory.GetDefaultModel(provider)).
		Dur("timeout", timeout).
		Dur("rate_limit", interval).
		Msg("LLM service initialized")

	return &Service{
		factory:      factory,
		provider:     provider,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		timeout:      timeout,
		temperature:  temperature,
		enableSearch: config.Gemini.Search,
		logger:       logger,
	}, nil
}

// ProviderName identifies the active backend
func (s *Service) ProviderName() string {
	return string(s.provider)
}

// Generate performs exactly one model call for the prompt. The rate
// limiter spaces calls out across the run; the timeout bounds a single
// call so one slow unit cannot hold a run open indefinitely.
func (s *Service) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	temperature := s.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	resp, err := s.factory.GenerateContent(callCtx, &ContentRequest{
		Prompt:       prompt,
		Temperature:  temperature,
		EnableSearch: opts.EnableSearch && s.enableSearch,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

// Close releases the underlying provider clients
func (s *Service) Close() error {
	return s.factory.Close()
}
