// Package engine runs columns through the provider chain with a local
// heuristic fallback.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/llm"
	"github.com/Veraticus/sift/internal/model"
)

// Strategy decides when providers are consulted.
type Strategy string

// Supported strategies.
const (
	// StrategyAIFirst asks providers in order and falls back to the local
	// classifier when all of them fail.
	StrategyAIFirst Strategy = "ai-first"
	// StrategyLocalFirst classifies locally and asks providers only when the
	// local confidence is under the AI threshold.
	StrategyLocalFirst Strategy = "local-first"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAIFirst, StrategyLocalFirst:
		return Strategy(s), nil
	case "":
		return StrategyAIFirst, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", common.ErrInvalidConfig, s)
	}
}

// Config holds configuration options for the orchestrator.
type Config struct {
	Strategy       Strategy
	MaxConcurrency int
	AIThreshold    float64
	MaxAttempts    int
	RetryDelay     time.Duration
	RetryMaxDelay  time.Duration
	CacheTTL       time.Duration
	DisableCache   bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyAIFirst,
		MaxConcurrency: 4,
		AIThreshold:    0.7,
		MaxAttempts:    1,
		RetryDelay:     500 * time.Millisecond,
		RetryMaxDelay:  5 * time.Second,
		CacheTTL:       DefaultCacheTTL,
	}
}

// ProgressFunc is called once per finished column. Calls are serialized.
type ProgressFunc func(completed, total int, result model.ClassificationResult)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress registers a callback for ClassifyTable.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// Orchestrator classifies columns. It holds no per-request state and is safe
// for concurrent use.
type Orchestrator struct {
	local    *classification.Heuristic
	cache    *resultCache
	logger   *slog.Logger
	progress ProgressFunc
	cfg      Config
}

// New creates an orchestrator over the local classifier.
func New(local *classification.Heuristic, cfg Config, opts ...Option) *Orchestrator {
	defaults := DefaultConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = defaults.Strategy
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaults.RetryMaxDelay
	}
	cfg.AIThreshold = model.ClampConfidence(cfg.AIThreshold)

	o := &Orchestrator{
		local: local,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = common.LoggerOrDefault(o.logger)
	if !cfg.DisableCache {
		o.cache = newResultCache(cfg.CacheTTL)
	}
	return o
}

// Close releases the result cache.
func (o *Orchestrator) Close() {
	if o.cache != nil {
		o.cache.close()
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

type step int

const (
	stepTryNextProvider step = iota
	stepLocalFallback
	stepDone
)

// ClassifyColumn never fails: provider errors are logged and the next
// provider is tried, and the local classifier answers when none succeed.
func (o *Orchestrator) ClassifyColumn(ctx context.Context, column model.Column, chain Chain) model.ClassificationResult {
	var local *model.ClassificationResult
	if o.cfg.Strategy == StrategyLocalFirst {
		r := o.local.Classify(column)
		if r.Confidence >= o.cfg.AIThreshold || chain.Len() == 0 {
			return r
		}
		local = &r
	}

	req := llm.NewRequest(column)
	next := 0
	current := stepTryNextProvider
	var result model.ClassificationResult

	for current != stepDone {
		switch current {
		case stepTryNextProvider:
			if next >= chain.Len() || ctx.Err() != nil {
				current = stepLocalFallback
				continue
			}
			provider := chain.providers[next]
			next++

			r, err := o.callProvider(ctx, provider, req)
			if err != nil {
				o.logger.Warn("provider failed, trying next",
					"column", column.Name,
					"provider", provider.Name(),
					"reason", llm.ReasonOf(err),
					"error", err)
				continue
			}

			result = o.completeRemote(r, column, provider.Name())
			if local != nil && result.Confidence <= local.Confidence {
				result = *local
			}
			current = stepDone

		case stepLocalFallback:
			if local != nil {
				result = *local
			} else {
				result = o.local.Classify(column)
			}
			current = stepDone
		}
	}

	return result
}

// ClassifyTable classifies every column with bounded parallelism. The result
// order matches the input and the slice is always complete; the error is the
// context error when the caller cancelled.
func (o *Orchestrator) ClassifyTable(ctx context.Context, columns []model.Column, chain Chain) ([]model.ClassificationResult, error) {
	results := make([]model.ClassificationResult, len(columns))

	var mu sync.Mutex
	completed := 0

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.MaxConcurrency)
	for i, column := range columns {
		g.Go(func() error {
			results[i] = o.ClassifyColumn(ctx, column, chain)

			if o.progress != nil {
				mu.Lock()
				completed++
				o.progress(completed, len(columns), results[i])
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	o.logger.Debug("classified table",
		"columns", len(columns),
		"providers", chain.Names())

	return results, ctx.Err()
}

// callProvider consults the cache, then the provider. Only RateLimited
// failures are retried.
func (o *Orchestrator) callProvider(ctx context.Context, provider llm.Provider, req llm.Request) (model.ClassificationResult, error) {
	key := cacheKey(provider.Name(), req)
	if o.cache != nil {
		if cached, ok := o.cache.get(key); ok {
			o.logger.Debug("provider cache hit", "column", req.Column, "provider", provider.Name())
			return cached, nil
		}
	}

	var result model.ClassificationResult
	err := common.WithRetry(ctx, func() error {
		r, err := provider.Classify(ctx, req)
		if err != nil {
			if llm.ReasonOf(err) == llm.ReasonRateLimited {
				return err
			}
			return common.Permanent(err)
		}
		result = r
		return nil
	}, common.RetryOptions{
		MaxAttempts:  o.cfg.MaxAttempts,
		InitialDelay: o.cfg.RetryDelay,
		MaxDelay:     o.cfg.RetryMaxDelay,
	})
	if err != nil {
		return model.ClassificationResult{}, err
	}

	if err := result.Validate(); err != nil {
		return model.ClassificationResult{}, llm.NewProviderError(provider.Name(), llm.ReasonMalformedResponse, err)
	}

	if o.cache != nil {
		o.cache.set(key, result)
	}
	return result, nil
}

// completeRemote fills the fields a provider does not know about and tags
// the answer with the provider that gave it.
func (o *Orchestrator) completeRemote(r model.ClassificationResult, column model.Column, provider string) model.ClassificationResult {
	r.Source = model.AIProvider(provider)
	r.Column = column.Name
	r.Confidence = model.ClampConfidence(r.Confidence)
	r.SampleValues = column.Samples(classification.SampleValueCount)
	r.Stats = column.Stats(o.local.SampleSize())
	r.Scores = nil
	return r
}
