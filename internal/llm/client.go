package llm

import (
	"context"
	"time"

	"github.com/Veraticus/sift/internal/model"
)

const (
	// MaxPromptSamples bounds how many values are sent to a provider.
	MaxPromptSamples = 5
	// DefaultConfidence is used when a provider reply carries no confidence.
	DefaultConfidence = 0.75
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 15 * time.Second
	// DefaultRateLimit is the default requests-per-minute budget.
	DefaultRateLimit = 60
)

// Provider classifies a column with a remote model.
type Provider interface {
	// Name returns the provider identifier, e.g. "groq".
	Name() string
	// Classify returns a result tagged AIProvider(Name()) or a *ProviderError.
	Classify(ctx context.Context, req Request) (model.ClassificationResult, error)
}

// Request is the provider-neutral classification input.
type Request struct {
	Column  string
	Samples []string
}

// NewRequest builds a request from a column using its first distinct values.
func NewRequest(column model.Column) Request {
	return Request{
		Column:  column.Name,
		Samples: column.Samples(MaxPromptSamples),
	}
}

// Config holds provider settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

func (c Config) withDefaults(info ProviderInfo) Config {
	if c.Model == "" {
		c.Model = info.DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = info.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 150
	}
	return c
}

func newResult(provider string, req Request, reply reply) model.ClassificationResult {
	return model.ClassificationResult{
		Column:       req.Column,
		Category:     reply.Category,
		Confidence:   reply.Confidence,
		Reasoning:    reply.Reasoning,
		Source:       model.AIProvider(provider),
		SampleValues: req.Samples,
	}
}
