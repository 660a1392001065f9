package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider. ProviderNone disables the
// generative service; callers then receive ErrServiceUnavailable.
const (
	ProviderNone       = "none"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

type Config struct {
	// Provider is one of the Provider* names. Empty means ProviderNone.
	Provider string `mapstructure:"provider"`

	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration `mapstructure:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// BaseURL points the client at an OpenAI-compatible gateway.
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig leaves the service disabled. Hints, lessons and diagnosis
// all have non-generative fallbacks, so no key is needed to run.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderNone,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// keyedProvider ties a provider to the vendor's conventional key variable
// and to where its key lives in Config.
type keyedProvider struct {
	name   string
	envVar string
	key    func(*Config) *string
}

// keyedProviders is in discovery order.
var keyedProviders = []keyedProvider{
	{ProviderGemini, "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{ProviderOpenAI, "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{ProviderAnthropic, "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{ProviderOpenRouter, "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

// DiscoverConfig selects the first provider whose vendor key variable is
// set in the environment. It reports false and returns cfg unchanged when
// none is.
func DiscoverConfig(cfg Config) (Config, bool) {
	for _, kp := range keyedProviders {
		if k := os.Getenv(kp.envVar); k != "" {
			cfg.Provider = kp.name
			*kp.key(&cfg) = k
			return cfg, true
		}
	}
	return cfg, false
}

func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// Validate reports an unknown provider or a keyed provider with no key.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderNone, ProviderMock:
		return nil
	}
	for _, kp := range keyedProviders {
		if kp.name != c.Provider {
			continue
		}
		if *kp.key(&c) == "" {
			return fmt.Errorf("TUTOR_LLM_%s_API_KEY is required for the %s provider", strings.ToUpper(kp.name), kp.name)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
