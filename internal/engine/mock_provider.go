package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Veraticus/sift/internal/llm"
	"github.com/Veraticus/sift/internal/model"
)

// MockProvider is a test implementation of llm.Provider with scripted
// answers, failures and latency.
type MockProvider struct {
	respond func(req llm.Request) (model.ClassificationResult, error)
	name    string
	calls   []llm.Request
	delay   time.Duration
	mu      sync.Mutex
}

// NewMockProvider creates a provider that answers Unknown with confidence 0.5.
func NewMockProvider(name string) *MockProvider {
	m := &MockProvider{name: name}
	return m.WithResult(model.CategoryUnknown, 0.5)
}

// WithResult makes every call succeed with the given category.
func (m *MockProvider) WithResult(category model.Category, confidence float64) *MockProvider {
	m.respond = func(req llm.Request) (model.ClassificationResult, error) {
		return model.ClassificationResult{
			Column:     req.Column,
			Category:   category,
			Confidence: confidence,
			Reasoning:  "mock",
			Source:     model.AIProvider(m.name),
		}, nil
	}
	return m
}

// WithError makes every call fail with the given reason.
func (m *MockProvider) WithError(reason llm.Reason) *MockProvider {
	m.respond = func(llm.Request) (model.ClassificationResult, error) {
		return model.ClassificationResult{}, llm.NewProviderError(m.name, reason, errors.New("mock failure"))
	}
	return m
}

// WithResponder installs a custom answer function.
func (m *MockProvider) WithResponder(fn func(req llm.Request) (model.ClassificationResult, error)) *MockProvider {
	m.respond = fn
	return m
}

// WithDelay makes every call wait before answering. A call whose context ends
// first fails with Timeout.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.delay = d
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string {
	return m.name
}

// Classify implements llm.Provider.
func (m *MockProvider) Classify(ctx context.Context, req llm.Request) (model.ClassificationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	delay := m.delay
	respond := m.respond
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.ClassificationResult{}, llm.NewProviderError(m.name, llm.ReasonTimeout, ctx.Err())
		case <-timer.C:
		}
	}

	return respond(req)
}

// Calls returns a copy of every request received.
func (m *MockProvider) Calls() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of requests received.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
