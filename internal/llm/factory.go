package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Provider identifiers.
const (
	ProviderOpenRouter  = "openrouter"
	ProviderGroq        = "groq"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderHuggingFace = "huggingface"
)

// ProviderInfo describes a supported provider and its defaults.
type ProviderInfo struct {
	Name         string
	EnvVar       string
	BaseURL      string
	DefaultModel string
	DefaultRank  int
}

var providerInfos = map[string]ProviderInfo{
	ProviderOpenRouter: {
		Name:         ProviderOpenRouter,
		EnvVar:       "OPENROUTER_API_KEY",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "meta-llama/llama-3.1-8b-instruct",
		DefaultRank:  1,
	},
	ProviderGroq: {
		Name:         ProviderGroq,
		EnvVar:       "GROQ_API_KEY",
		BaseURL:      "https://api.groq.com/openai/v1",
		DefaultModel: "llama-3.1-8b-instant",
		DefaultRank:  2,
	},
	ProviderOpenAI: {
		Name:         ProviderOpenAI,
		EnvVar:       "OPENAI_API_KEY",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o-mini",
		DefaultRank:  3,
	},
	ProviderAnthropic: {
		Name:         ProviderAnthropic,
		EnvVar:       "ANTHROPIC_API_KEY",
		BaseURL:      "https://api.anthropic.com/v1",
		DefaultModel: "claude-3-5-haiku-latest",
		DefaultRank:  4,
	},
	ProviderHuggingFace: {
		Name:         ProviderHuggingFace,
		EnvVar:       "HUGGINGFACE_API_KEY",
		BaseURL:      "https://api-inference.huggingface.co/models",
		DefaultModel: "mistralai/Mistral-7B-Instruct-v0.3",
		DefaultRank:  5,
	},
}

// KnownProviders returns every supported provider ordered by default rank.
func KnownProviders() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(providerInfos))
	for _, info := range providerInfos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DefaultRank < out[j].DefaultRank
	})
	return out
}

// LookupProvider returns the info for a provider name.
func LookupProvider(name string) (ProviderInfo, bool) {
	info, ok := providerInfos[strings.ToLower(strings.TrimSpace(name))]
	return info, ok
}

// NewProvider creates a provider based on the configuration. An empty API key
// is not an error here: the provider reports AuthMissing on every call.
func NewProvider(cfg Config) (Provider, error) {
	info, ok := LookupProvider(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	cfg.Provider = info.Name
	cfg = cfg.withDefaults(info)

	switch info.Name {
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	case ProviderHuggingFace:
		return newHuggingFaceClient(cfg), nil
	default:
		return newOpenAICompatibleClient(cfg), nil
	}
}
