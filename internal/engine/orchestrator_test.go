package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/llm"
	"github.com/Veraticus/sift/internal/model"
)

var (
	emailColumn = model.Column{Name: "email_addr", Values: []string{"a@b.com", "c@d.org", "not-an-email"}}
	phoneColumn = model.Column{Name: "phone", Values: []string{"+1-555-123-4567", "(555) 987-6543"}}
	junkColumn  = model.Column{Name: "xyz", Values: []string{"qwerty", "asdf", "junk"}}
)

func newTestHeuristic(t *testing.T) *classification.Heuristic {
	t.Helper()
	lib, err := classification.NewLibrary(classification.DefaultDefinitions(), classification.DefaultSampleSize)
	require.NoError(t, err)
	return classification.NewHeuristic(lib)
}

func newTestOrchestrator(t *testing.T, cfg Config, opts ...Option) *Orchestrator {
	t.Helper()
	o := New(newTestHeuristic(t), cfg, opts...)
	t.Cleanup(o.Close)
	return o
}

func TestOrchestrator_ClassifyColumn(t *testing.T) {
	local := newTestHeuristic(t)

	t.Run("first provider answers", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9)
		b := NewMockProvider("b").WithResult(model.CategoryPhoneNumber, 0.9)
		o := newTestOrchestrator(t, DefaultConfig())

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a, b))

		assert.Equal(t, model.CategoryEmail, got.Category)
		assert.Equal(t, model.AIProvider("a"), got.Source)
		assert.InDelta(t, 0.9, got.Confidence, 1e-9)
		assert.Equal(t, "email_addr", got.Column)
		assert.Equal(t, []string{"a@b.com", "c@d.org", "not-an-email"}, got.SampleValues)
		assert.Equal(t, 3, got.Stats.Total)
		assert.Nil(t, got.Scores)
		assert.Equal(t, 0, b.CallCount())
	})

	t.Run("failure advances to next provider", func(t *testing.T) {
		a := NewMockProvider("a").WithError(llm.ReasonTimeout)
		b := NewMockProvider("b").WithResult(model.CategoryEmail, 0.8)
		o := newTestOrchestrator(t, DefaultConfig())

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a, b))

		assert.Equal(t, model.AIProvider("b"), got.Source)
		assert.Equal(t, 1, a.CallCount())
		assert.Equal(t, 1, b.CallCount())
	})

	t.Run("answer without source is attributed to its provider", func(t *testing.T) {
		b := NewMockProvider("b").WithResponder(func(llm.Request) (model.ClassificationResult, error) {
			return model.ClassificationResult{Category: model.CategoryEmail, Confidence: 0.8}, nil
		})
		o := newTestOrchestrator(t, DefaultConfig())

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(b))

		assert.Equal(t, model.CategoryEmail, got.Category)
		assert.Equal(t, model.AIProvider("b"), got.Source)
		assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	})

	t.Run("provider past its deadline advances to next provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)

		a, err := llm.NewProvider(llm.Config{
			Provider: llm.ProviderGroq,
			APIKey:   "test-key",
			BaseURL:  server.URL + "/v1",
			Model:    "test-model",
			Timeout:  50 * time.Millisecond,
		})
		require.NoError(t, err)
		b := NewMockProvider("b").WithResult(model.CategoryEmail, 0.8)
		o := newTestOrchestrator(t, DefaultConfig())

		start := time.Now()
		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a, b))

		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, model.CategoryEmail, got.Category)
		assert.Equal(t, model.AIProvider("b"), got.Source)
		assert.Equal(t, 1, b.CallCount())
	})

	t.Run("all providers fail equals local", func(t *testing.T) {
		chain := NewChain(
			NewMockProvider("a").WithError(llm.ReasonAuthMissing),
			NewMockProvider("b").WithError(llm.ReasonMalformedResponse),
			NewMockProvider("c").WithError(llm.ReasonNetworkError),
		)
		o := newTestOrchestrator(t, DefaultConfig())

		got := o.ClassifyColumn(context.Background(), emailColumn, chain)
		assert.Equal(t, local.Classify(emailColumn), got)
		assert.Equal(t, model.LocalHeuristic(), got.Source)
	})

	t.Run("empty chain equals local", func(t *testing.T) {
		o := newTestOrchestrator(t, DefaultConfig())
		for _, col := range []model.Column{emailColumn, phoneColumn, junkColumn} {
			assert.Equal(t, local.Classify(col), o.ClassifyColumn(context.Background(), col, Chain{}))
		}
	})

	t.Run("out of range answer is rejected", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.Category("Spaceship"), 0.9)
		b := NewMockProvider("b").WithResult(model.CategoryEmail, 0.8)
		o := newTestOrchestrator(t, DefaultConfig())

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a, b))
		assert.Equal(t, model.AIProvider("b"), got.Source)
	})

	t.Run("cancelled context skips providers", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9)
		o := newTestOrchestrator(t, DefaultConfig())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := o.ClassifyColumn(ctx, emailColumn, NewChain(a))
		assert.Equal(t, model.LocalHeuristic(), got.Source)
		assert.Equal(t, 0, a.CallCount())
	})

	t.Run("deadline during call falls back locally", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9).WithDelay(time.Second)
		b := NewMockProvider("b").WithResult(model.CategoryEmail, 0.9)
		o := newTestOrchestrator(t, DefaultConfig())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		got := o.ClassifyColumn(ctx, emailColumn, NewChain(a, b))
		assert.Equal(t, model.LocalHeuristic(), got.Source)
		assert.Equal(t, 0, b.CallCount())
	})
}

func TestOrchestrator_LocalFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyLocalFirst

	t.Run("confident local answer skips providers", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.99)
		o := newTestOrchestrator(t, cfg)

		got := o.ClassifyColumn(context.Background(), phoneColumn, NewChain(a))
		assert.Equal(t, model.CategoryPhoneNumber, got.Category)
		assert.Equal(t, model.LocalHeuristic(), got.Source)
		assert.Equal(t, 0, a.CallCount())
	})

	t.Run("more confident provider wins", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryReview, 0.9)
		o := newTestOrchestrator(t, cfg)

		got := o.ClassifyColumn(context.Background(), junkColumn, NewChain(a))
		assert.Equal(t, model.CategoryReview, got.Category)
		assert.Equal(t, model.AIProvider("a"), got.Source)
	})

	t.Run("less confident provider is ignored", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryReview, 0.0)
		o := newTestOrchestrator(t, cfg)

		got := o.ClassifyColumn(context.Background(), junkColumn, NewChain(a))
		assert.Equal(t, model.LocalHeuristic(), got.Source)
		assert.Equal(t, 1, a.CallCount())
	})
}

func TestOrchestrator_Retry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.RetryDelay = time.Millisecond
	cfg.RetryMaxDelay = 2 * time.Millisecond

	t.Run("rate limited call is retried", func(t *testing.T) {
		var attempts atomic.Int32
		a := NewMockProvider("a")
		a.WithResponder(func(req llm.Request) (model.ClassificationResult, error) {
			if attempts.Add(1) == 1 {
				return model.ClassificationResult{}, llm.NewProviderError("a", llm.ReasonRateLimited, errors.New("slow down"))
			}
			return model.ClassificationResult{Column: req.Column, Category: model.CategoryEmail, Confidence: 0.8, Source: model.AIProvider("a")}, nil
		})
		o := newTestOrchestrator(t, cfg)

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		assert.Equal(t, model.AIProvider("a"), got.Source)
		assert.Equal(t, 2, a.CallCount())
	})

	t.Run("other failures are not retried", func(t *testing.T) {
		a := NewMockProvider("a").WithError(llm.ReasonNetworkError)
		o := newTestOrchestrator(t, cfg)

		got := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		assert.Equal(t, model.LocalHeuristic(), got.Source)
		assert.Equal(t, 1, a.CallCount())
	})

	t.Run("default makes a single attempt", func(t *testing.T) {
		a := NewMockProvider("a").WithError(llm.ReasonRateLimited)
		o := newTestOrchestrator(t, DefaultConfig())

		o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		assert.Equal(t, 1, a.CallCount())
	})
}

func TestOrchestrator_Cache(t *testing.T) {
	t.Run("identical columns hit the cache", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9)
		o := newTestOrchestrator(t, DefaultConfig())

		first := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		second := o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))

		assert.Equal(t, first, second)
		assert.Equal(t, 1, a.CallCount())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		a := NewMockProvider("a").WithError(llm.ReasonNetworkError)
		o := newTestOrchestrator(t, DefaultConfig())

		o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		assert.Equal(t, 2, a.CallCount())
	})

	t.Run("disabled cache always asks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DisableCache = true
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9)
		o := newTestOrchestrator(t, cfg)

		o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		o.ClassifyColumn(context.Background(), emailColumn, NewChain(a))
		assert.Equal(t, 2, a.CallCount())
	})
}

func TestOrchestrator_ClassifyTable(t *testing.T) {
	columns := make([]model.Column, 8)
	for i := range columns {
		columns[i] = model.Column{Name: fmt.Sprintf("col_%d", i), Values: []string{"a@b.com"}}
	}

	t.Run("order is preserved under variable latency", func(t *testing.T) {
		a := NewMockProvider("a")
		a.WithResponder(func(req llm.Request) (model.ClassificationResult, error) {
			var idx int
			_, _ = fmt.Sscanf(req.Column, "col_%d", &idx)
			time.Sleep(time.Duration(len(columns)-idx) * 3 * time.Millisecond)
			return model.ClassificationResult{Column: req.Column, Category: model.CategoryEmail, Confidence: 0.9, Source: model.AIProvider("a")}, nil
		})

		var progressCalls atomic.Int32
		var lastCompleted atomic.Int32
		o := newTestOrchestrator(t, DefaultConfig(), WithProgress(func(completed, total int, _ model.ClassificationResult) {
			progressCalls.Add(1)
			lastCompleted.Store(int32(completed))
			assert.Equal(t, len(columns), total)
		}))

		results, err := o.ClassifyTable(context.Background(), columns, NewChain(a))
		require.NoError(t, err)
		require.Len(t, results, len(columns))
		for i, r := range results {
			assert.Equal(t, columns[i].Name, r.Column)
			assert.Equal(t, model.AIProvider("a"), r.Source)
		}
		assert.Equal(t, int32(len(columns)), progressCalls.Load())
		assert.Equal(t, int32(len(columns)), lastCompleted.Load())
	})

	t.Run("local only is idempotent", func(t *testing.T) {
		o := newTestOrchestrator(t, DefaultConfig())
		input := []model.Column{emailColumn, phoneColumn, junkColumn}

		first, err := o.ClassifyTable(context.Background(), input, Chain{})
		require.NoError(t, err)
		second, err := o.ClassifyTable(context.Background(), input, Chain{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, model.CategoryEmail, first[0].Category)
		assert.Equal(t, model.CategoryPhoneNumber, first[1].Category)
		assert.Equal(t, model.CategoryUnknown, first[2].Category)
	})

	t.Run("cancellation still returns every column", func(t *testing.T) {
		a := NewMockProvider("a").WithResult(model.CategoryEmail, 0.9)
		o := newTestOrchestrator(t, DefaultConfig())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := o.ClassifyTable(ctx, columns, NewChain(a))
		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, results, len(columns))
		for i, r := range results {
			assert.Equal(t, columns[i].Name, r.Column)
			assert.Equal(t, model.LocalHeuristic(), r.Source)
		}
		assert.Equal(t, 0, a.CallCount())
	})

	t.Run("empty table", func(t *testing.T) {
		o := newTestOrchestrator(t, DefaultConfig())
		results, err := o.ClassifyTable(context.Background(), nil, Chain{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("local-first")
	require.NoError(t, err)
	assert.Equal(t, StrategyLocalFirst, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyAIFirst, s)

	_, err = ParseStrategy("ai-only")
	assert.Error(t, err)
}
