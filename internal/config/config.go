// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/engine"
	"github.com/Veraticus/sift/internal/llm"
)

// DefaultDatabasePath is where sessions are stored unless database.path is set.
const DefaultDatabasePath = "$HOME/.local/share/sift/sift.db"

// Config is the typed view of the sift configuration.
type Config struct {
	Providers  map[string]ProviderConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Classifier ClassifierConfig
	Engine     engine.Config
}

// ClassifierConfig configures the local heuristic.
type ClassifierConfig struct {
	DefinitionsFile string
	SampleSize      int
	ConfidenceFloor float64
}

// ProviderConfig configures one AI provider.
type ProviderConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int
	Priority  int
}

// DatabaseConfig locates the session store.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("classifier.sample_size", classification.DefaultSampleSize)
	v.SetDefault("classifier.confidence_floor", classification.DefaultConfidenceFloor)

	def := engine.DefaultConfig()
	v.SetDefault("classifier.ai_threshold", def.AIThreshold)
	v.SetDefault("engine.strategy", string(def.Strategy))
	v.SetDefault("engine.max_concurrency", def.MaxConcurrency)
	v.SetDefault("engine.max_attempts", def.MaxAttempts)
	v.SetDefault("engine.retry_delay", def.RetryDelay)
	v.SetDefault("engine.retry_max_delay", def.RetryMaxDelay)
	v.SetDefault("engine.cache_ttl", def.CacheTTL)
	v.SetDefault("engine.disable_cache", false)

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("ui.theme", "default")
}

// Load builds a validated Config from v. Provider API keys fall back to the
// provider's conventional environment variable, e.g. GROQ_API_KEY.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	strategy, err := engine.ParseStrategy(v.GetString("engine.strategy"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Classifier: ClassifierConfig{
			SampleSize:      v.GetInt("classifier.sample_size"),
			ConfidenceFloor: v.GetFloat64("classifier.confidence_floor"),
			DefinitionsFile: ExpandPath(v.GetString("classifier.definitions_file")),
		},
		Engine: engine.Config{
			Strategy:       strategy,
			AIThreshold:    v.GetFloat64("classifier.ai_threshold"),
			MaxConcurrency: v.GetInt("engine.max_concurrency"),
			MaxAttempts:    v.GetInt("engine.max_attempts"),
			RetryDelay:     v.GetDuration("engine.retry_delay"),
			RetryMaxDelay:  v.GetDuration("engine.retry_max_delay"),
			CacheTTL:       v.GetDuration("engine.cache_ttl"),
			DisableCache:   v.GetBool("engine.disable_cache"),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Providers: make(map[string]ProviderConfig),
	}

	for name := range v.GetStringMap("providers") {
		if _, ok := llm.LookupProvider(name); !ok {
			return nil, fmt.Errorf("%w: unknown provider %q", common.ErrInvalidConfig, name)
		}
	}

	for _, info := range llm.KnownProviders() {
		prefix := "providers." + info.Name + "."
		pc := ProviderConfig{
			APIKey:    strings.TrimSpace(v.GetString(prefix + "api_key")),
			Model:     v.GetString(prefix + "model"),
			BaseURL:   v.GetString(prefix + "base_url"),
			Timeout:   v.GetDuration(prefix + "timeout"),
			RateLimit: v.GetInt(prefix + "rate_limit"),
			Priority:  v.GetInt(prefix + "priority"),
		}
		if pc.APIKey == "" {
			pc.APIKey = strings.TrimSpace(os.Getenv(info.EnvVar))
		}
		cfg.Providers[info.Name] = pc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Classifier.SampleSize <= 0:
		return fmt.Errorf("%w: classifier.sample_size must be positive", common.ErrInvalidConfig)
	case c.Classifier.ConfidenceFloor < 0 || c.Classifier.ConfidenceFloor > 1:
		return fmt.Errorf("%w: classifier.confidence_floor must be between 0 and 1", common.ErrInvalidConfig)
	case c.Engine.AIThreshold < 0 || c.Engine.AIThreshold > 1:
		return fmt.Errorf("%w: classifier.ai_threshold must be between 0 and 1", common.ErrInvalidConfig)
	case c.Engine.MaxConcurrency <= 0:
		return fmt.Errorf("%w: engine.max_concurrency must be positive", common.ErrInvalidConfig)
	case c.Engine.MaxAttempts <= 0:
		return fmt.Errorf("%w: engine.max_attempts must be positive", common.ErrInvalidConfig)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: invalid log format: %s", common.ErrInvalidConfig, c.Logging.Format)
	}

	for name, p := range c.Providers {
		if p.Timeout < 0 || p.RateLimit < 0 || p.Priority < 0 {
			return fmt.Errorf("%w: providers.%s values must not be negative", common.ErrInvalidConfig, name)
		}
	}
	return nil
}

// ProviderSpecs returns one spec per known provider. Providers without an
// API key are dropped later by engine.BuildChain.
func (c *Config) ProviderSpecs() []engine.ProviderSpec {
	specs := make([]engine.ProviderSpec, 0, len(c.Providers))
	for _, info := range llm.KnownProviders() {
		p, ok := c.Providers[info.Name]
		if !ok {
			continue
		}
		specs = append(specs, engine.ProviderSpec{
			Config: llm.Config{
				Provider:  info.Name,
				APIKey:    p.APIKey,
				Model:     p.Model,
				BaseURL:   p.BaseURL,
				Timeout:   p.Timeout,
				RateLimit: p.RateLimit,
			},
			Priority: p.Priority,
		})
	}
	return specs
}

// Heuristic builds the local classifier, merging the optional definitions file.
func (c *Config) Heuristic(opts ...classification.HeuristicOption) (*classification.Heuristic, error) {
	defs := classification.DefaultDefinitions()
	if c.Classifier.DefinitionsFile != "" {
		var err error
		defs, err = classification.LoadDefinitions(c.Classifier.DefinitionsFile, defs)
		if err != nil {
			return nil, err
		}
	}

	lib, err := classification.NewLibrary(defs, c.Classifier.SampleSize)
	if err != nil {
		return nil, err
	}

	opts = append([]classification.HeuristicOption{
		classification.WithConfidenceFloor(c.Classifier.ConfidenceFloor),
	}, opts...)
	return classification.NewHeuristic(lib, opts...), nil
}
