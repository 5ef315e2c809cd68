package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
	"github.com/custodia-labs/archivist/internal/metrics"
)

// Ensure AnswerGenerator implements the interface.
var _ driving.AnswerService = (*AnswerGenerator)(nil)

// AnswerConfig bounds prompt size and the completion retry policy.
type AnswerConfig struct {
	// Provider labels metrics and log lines.
	Provider string

	// MaxContextChars bounds the context block embedded in the prompt.
	MaxContextChars int

	// MaxAttempts caps completion attempts, including the first.
	MaxAttempts int

	// InitialInterval is the wait before the second attempt.
	InitialInterval time.Duration

	// Multiplier grows the wait between consecutive attempts.
	Multiplier float64

	// MaxWait caps the wait between attempts.
	MaxWait time.Duration

	// Timeout bounds each individual attempt. Zero disables it.
	Timeout time.Duration
}

// DefaultAnswerConfig returns the retry policy used in production.
func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{
		MaxContextChars: 8000,
		MaxAttempts:     3,
		InitialInterval: 700 * time.Millisecond,
		Multiplier:      2,
		MaxWait:         8 * time.Second,
		Timeout:         60 * time.Second,
	}
}

// AnswerConfigFromSettings derives an AnswerConfig from application settings.
func AnswerConfigFromSettings(s domain.AppSettings) AnswerConfig {
	cfg := DefaultAnswerConfig()
	cfg.Provider = string(s.LLM.Provider)
	if s.Answer.MaxContextChars > 0 {
		cfg.MaxContextChars = s.Answer.MaxContextChars
	}
	if s.Answer.MaxAttempts > 0 {
		cfg.MaxAttempts = s.Answer.MaxAttempts
	}
	if s.Answer.MaxWaitSeconds > 0 {
		cfg.MaxWait = time.Duration(s.Answer.MaxWaitSeconds) * time.Second
	}
	if s.LLM.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(s.LLM.TimeoutSeconds) * time.Second
	}
	return cfg
}

// AnswerGenerator turns ranked hits into a cited answer via a completion service.
type AnswerGenerator struct {
	llm     driven.CompletionService
	prompts driven.PromptStore
	cfg     AnswerConfig
}

// NewAnswerGenerator creates a new answer generator.
// Panics if cfg.MaxContextChars is below domain.MinContextChars.
func NewAnswerGenerator(
	llm driven.CompletionService,
	prompts driven.PromptStore,
	cfg AnswerConfig,
) *AnswerGenerator {
	if cfg.MaxContextChars < domain.MinContextChars {
		panic(fmt.Sprintf("services: context budget %d below minimum %d", cfg.MaxContextChars, domain.MinContextChars))
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	return &AnswerGenerator{llm: llm, prompts: prompts, cfg: cfg}
}

// GenerateAnswer builds the prompt from hits and returns the trimmed completion.
func (g *AnswerGenerator) GenerateAnswer(
	ctx context.Context, query string, hits []domain.SearchHit,
) (string, error) {
	logger.Section("Answer Generation")

	if g.llm == nil {
		return "", domain.ErrCompletionUnavailable
	}

	system, user, err := g.buildPrompt(query, hits)
	if err != nil {
		return "", err
	}
	logger.Debug("Model: %s, hits: %d, prompt chars: %d", g.llm.ModelName(), len(hits), len(user))

	answer, err := g.completeWithRetry(ctx, system, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (g *AnswerGenerator) buildPrompt(query string, hits []domain.SearchHit) (system, user string, err error) {
	system, err = g.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return "", "", fmt.Errorf("load system prompt: %w", err)
	}
	tmpl, err := g.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return "", "", fmt.Errorf("load user prompt: %w", err)
	}

	block := NoContext
	if len(hits) > 0 {
		block = BoundContext(BuildContext(hits), g.cfg.MaxContextChars)
	}
	return system, fmt.Sprintf(tmpl, query, block), nil
}

func (g *AnswerGenerator) completeWithRetry(ctx context.Context, system, user string) (string, error) {
	var (
		answer  string
		attempt int
	)

	op := func() error {
		attempt++
		start := time.Now()

		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}

		out, err := g.llm.Complete(callCtx, system, user)
		if err == nil {
			metrics.ObserveCompletion(g.cfg.Provider, "success", start)
			answer = out
			return nil
		}

		err = classify(g.cfg.Provider, err)
		if domain.IsPermanent(err) {
			metrics.ObserveCompletion(g.cfg.Provider, string(domain.KindPermanent), start)
			logger.Warn("Completion attempt %d failed permanently: %v", attempt, err)
			return backoff.Permanent(err)
		}
		metrics.ObserveCompletion(g.cfg.Provider, string(domain.KindTransient), start)
		logger.Warn("Completion attempt %d/%d failed: %v", attempt, g.cfg.MaxAttempts, err)
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("Retrying completion in %s", wait)
	}

	if err := backoff.RetryNotify(op, g.newBackOff(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("completion cancelled after %d attempts: %w", attempt, ctxErr)
		}
		return "", fmt.Errorf("completion failed after %d attempts: %w", attempt, err)
	}
	return answer, nil
}

func (g *AnswerGenerator) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialInterval
	b.Multiplier = g.cfg.Multiplier
	b.MaxInterval = g.cfg.MaxWait
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.MaxAttempts-1)), ctx)
}

// classify ensures err carries a transient or permanent kind.
// Unclassified failures are assumed transient.
func classify(provider string, err error) error {
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	return &domain.ServiceError{Kind: domain.KindTransient, Provider: provider, Err: err}
}
