package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	for _, info := range KnownProviders() {
		t.Run(info.Name, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: info.Name, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, info.Name, p.Name())
		})
	}

	p, err := NewProvider(Config{Provider: "  GROQ "})
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, p.Name())

	_, err = NewProvider(Config{Provider: "claudecode"})
	assert.Error(t, err)
}

func TestKnownProviders(t *testing.T) {
	infos := KnownProviders()
	require.Len(t, infos, 5)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
		assert.NotEmpty(t, info.EnvVar)
		assert.NotEmpty(t, info.DefaultModel)
	}
	assert.Equal(t, []string{ProviderOpenRouter, ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderHuggingFace}, names)

	_, ok := LookupProvider("nope")
	assert.False(t, ok)
}
