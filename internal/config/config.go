// Package config loads tutorloop settings from defaults, an optional
// tutorloop.yaml, a .env file and TUTOR_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/tutorloop/internal/curriculum"
	"github.com/abhisek/tutorloop/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. TUTOR_SERVER_ADDR.
const EnvPrefix = "TUTOR"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Recorder  RecorderConfig  `mapstructure:"recorder"`
	Session   SessionConfig   `mapstructure:"session"`
	LLM       llm.Config      `mapstructure:"llm"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	GinMode string `mapstructure:"gin_mode"` // debug, release or test
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty resolves to store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// OptimizerConfig controls the automatic curriculum optimization schedule.
type OptimizerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Delay     time.Duration `mapstructure:"delay"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

type RecorderConfig struct {
	Buffer int `mapstructure:"buffer"`
}

type SessionConfig struct {
	QuestionCount int `mapstructure:"question_count"`
}

// Options tells Load where to look.
type Options struct {
	// ConfigFile is an explicit config path. When empty, tutorloop.yaml is
	// looked up in the working directory and a missing file is not an error.
	ConfigFile string

	// EnvFile is loaded before the environment is read. When empty, .env in
	// the working directory is used and a missing file is not an error.
	EnvFile string
}

// Load builds the configuration.
func Load(opts Options) (*Config, error) {
	// .env never overrides variables already set in the environment.
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("tutorloop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.path", EnvPrefix+"_DB", EnvPrefix+"_DATABASE_PATH"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Fall back to well-known provider keys when nothing is configured.
	if !cfg.LLM.Enabled() {
		cfg.LLM, _ = llm.DiscoverConfig(cfg.LLM)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Optimizer.Enabled && c.Optimizer.Interval <= 0 {
		return errors.New("optimizer.interval must be positive when the optimizer is enabled")
	}
	if c.Recorder.Buffer <= 0 {
		return errors.New("recorder.buffer must be positive")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.Server.GinMode)
	}
	return c.LLM.Validate()
}

// EngineConfig returns the curriculum engine settings.
func (c *Config) EngineConfig() curriculum.Config {
	ec := curriculum.DefaultConfig()
	ec.Delay = c.Optimizer.Delay
	if c.Optimizer.MaxTokens > 0 {
		ec.MaxTokens = c.Optimizer.MaxTokens
	}
	return ec
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	ec := curriculum.DefaultConfig()
	v.SetDefault("optimizer.enabled", false)
	v.SetDefault("optimizer.interval", 24*time.Hour)
	v.SetDefault("optimizer.delay", ec.Delay)
	v.SetDefault("optimizer.max_tokens", ec.MaxTokens)
	v.SetDefault("recorder.buffer", curriculum.DefaultRecorderBuffer)
	v.SetDefault("session.question_count", 10)

	lc := llm.DefaultConfig()
	v.SetDefault("llm.provider", lc.Provider)
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", lc.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", lc.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", lc.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", lc.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
}
