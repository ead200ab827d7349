package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/lewisedginton/genai_gateway/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ENABLE_GEMINI", "LLM_PROVIDER", "GEMINI_MODEL", "OPENAI_MODEL", "LOG_LEVEL",
		"HTTP_PORT", "GRPC_PORT", "MAX_REQUEST_SIZE", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestAppConfigDefaults(t *testing.T) {
	clearEnv(t)
	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))

	assert.False(t, cfg.EnableGemini)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "gemini-2.5-flash", cfg.ModelName())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 8000, cfg.GRPC.Port)
	assert.Equal(t, int64(1048576), cfg.Security.MaxRequestSize)
}

func TestAppConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
enable_gemini: true
llm_provider: openai
openai:
  model: gpt-4o
log_level: debug
`), 0o600))
	t.Setenv("OPENAI_API_KEY", "sk-test")

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfig(&cfg, path, false))

	assert.True(t, cfg.EnableGemini)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.ModelName())
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestAppConfigValidate(t *testing.T) {
	clearEnv(t)
	valid := func() AppConfig {
		var cfg AppConfig
		require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*AppConfig) {}},
		{
			name:   "disabled flag needs no credentials",
			mutate: func(c *AppConfig) { c.LLM.Provider = ProviderClaude },
		},
		{
			name:    "enabled gemini needs api key",
			mutate:  func(c *AppConfig) { c.EnableGemini = true },
			wantErr: "GEMINI_API_KEY",
		},
		{
			name: "vertex ai replaces api key",
			mutate: func(c *AppConfig) {
				c.EnableGemini = true
				c.Gemini.Project = "proj"
				c.Gemini.Region = "europe-west1"
			},
		},
		{
			name: "enabled openai needs api key",
			mutate: func(c *AppConfig) {
				c.EnableGemini = true
				c.LLM.Provider = ProviderOpenAI
			},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name: "enabled claude needs api key",
			mutate: func(c *AppConfig) {
				c.EnableGemini = true
				c.LLM.Provider = ProviderClaude
			},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *AppConfig) { c.LLM.Provider = "palm" },
			wantErr: "llm_provider must be one of",
		},
		{
			name:    "bad grpc port",
			mutate:  func(c *AppConfig) { c.GRPC.Port = 70000 },
			wantErr: "grpc port",
		},
		{
			name:    "bad request size",
			mutate:  func(c *AppConfig) { c.Security.MaxRequestSize = 0 },
			wantErr: "max_request_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
