package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/sift/internal/llm"
)

// Chain is an immutable, priority-ordered list of providers. The zero value is
// an empty chain, which makes every column fall back to local classification.
type Chain struct {
	providers []llm.Provider
}

// NewChain creates a chain that tries providers in the given order.
func NewChain(providers ...llm.Provider) Chain {
	out := make([]llm.Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			out = append(out, p)
		}
	}
	return Chain{providers: out}
}

// Len returns the number of providers in the chain.
func (c Chain) Len() int {
	return len(c.providers)
}

// Names returns provider names in priority order.
func (c Chain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Only returns a chain restricted to the named providers, keeping priority
// order. An empty list returns the chain unchanged.
func (c Chain) Only(names ...string) Chain {
	if len(names) == 0 {
		return c
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.ToLower(strings.TrimSpace(n))] = true
	}
	out := make([]llm.Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if keep[p.Name()] {
			out = append(out, p)
		}
	}
	return Chain{providers: out}
}

// ProviderSpec is one configured provider. Priority 0 means the provider's
// default rank; lower values are tried first.
type ProviderSpec struct {
	Config   llm.Config
	Priority int
}

// BuildChain creates providers for every spec that has credentials and orders
// them by priority, then by name. Specs without an API key are skipped.
func BuildChain(specs []ProviderSpec) (Chain, error) {
	type ranked struct {
		provider llm.Provider
		rank     int
	}

	seen := make(map[string]bool, len(specs))
	candidates := make([]ranked, 0, len(specs))
	for _, spec := range specs {
		info, ok := llm.LookupProvider(spec.Config.Provider)
		if !ok {
			return Chain{}, fmt.Errorf("unsupported LLM provider: %s", spec.Config.Provider)
		}
		if seen[info.Name] {
			return Chain{}, fmt.Errorf("provider %s configured twice", info.Name)
		}
		seen[info.Name] = true

		if strings.TrimSpace(spec.Config.APIKey) == "" {
			continue
		}

		provider, err := llm.NewProvider(spec.Config)
		if err != nil {
			return Chain{}, fmt.Errorf("failed to create provider %s: %w", info.Name, err)
		}

		rank := spec.Priority
		if rank <= 0 {
			rank = info.DefaultRank
		}
		candidates = append(candidates, ranked{provider: provider, rank: rank})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].provider.Name() < candidates[j].provider.Name()
	})

	providers := make([]llm.Provider, len(candidates))
	for i, c := range candidates {
		providers[i] = c.provider
	}
	return Chain{providers: providers}, nil
}
