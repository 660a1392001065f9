package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/llm"
)

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

// noEnvFile runs the test from an empty directory, so neither .env nor
// tutorloop.yaml is picked up implicitly.
func noEnvFile(t *testing.T) Options {
	t.Chdir(t.TempDir())
	return Options{}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderKeys(t)
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Optimizer.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Optimizer.Interval)
	assert.Equal(t, 2*time.Second, cfg.Optimizer.Delay)
	assert.Equal(t, 256, cfg.Recorder.Buffer)
	assert.Equal(t, 10, cfg.Session.QuestionCount)
	assert.False(t, cfg.LLM.Enabled())
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearProviderKeys(t)
	path := writeFile(t, "tutorloop.yaml", `
server:
  addr: ":9090"
log:
  level: warn
optimizer:
  enabled: true
  interval: 1h
llm:
  provider: mock
`)
	t.Setenv("TUTOR_LOG_LEVEL", "debug")
	t.Setenv("TUTOR_DB", "/tmp/tutor-test.db")
	t.Setenv("TUTOR_OPTIMIZER_DELAY", "500ms")

	opts := noEnvFile(t)
	opts.ConfigFile = path
	cfg, err := Load(opts)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level, "env wins over file")
	assert.True(t, cfg.Optimizer.Enabled)
	assert.Equal(t, time.Hour, cfg.Optimizer.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.EngineConfig().Delay)
	assert.Equal(t, "/tmp/tutor-test.db", cfg.Database.Path)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestLoad_DotEnv(t *testing.T) {
	clearProviderKeys(t)
	t.Cleanup(func() { os.Unsetenv("TUTOR_SERVER_ADDR") })
	envFile := writeFile(t, ".env", "TUTOR_SERVER_ADDR=:7070\n")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_ImplicitDotEnv(t *testing.T) {
	clearProviderKeys(t)
	t.Cleanup(func() { os.Unsetenv("TUTOR_SERVER_ADDR") })
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TUTOR_SERVER_ADDR=:6060\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
}

func TestLoad_DiscoversProviderKey(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		envFile string
	}{
		{name: "missing explicit file", file: "/nonexistent/tutorloop.yaml"},
		{name: "missing explicit env file", envFile: "/nonexistent/tutor.env"},
		{name: "optimizer without interval", env: map[string]string{
			"TUTOR_OPTIMIZER_ENABLED":  "true",
			"TUTOR_OPTIMIZER_INTERVAL": "0s",
		}},
		{name: "bad gin mode", env: map[string]string{"TUTOR_SERVER_GIN_MODE": "loud"}},
		{name: "provider without key", env: map[string]string{"TUTOR_LLM_PROVIDER": "anthropic"}},
		{name: "zero recorder buffer", env: map[string]string{"TUTOR_RECORDER_BUFFER": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderKeys(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := noEnvFile(t)
			opts.ConfigFile = tt.file
			opts.EnvFile = tt.envFile
			_, err := Load(opts)
			assert.Error(t, err)
		})
	}
}
