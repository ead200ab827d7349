// Package config defines the gateway's application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	pkgconfig "github.com/lewisedginton/genai_gateway/pkg/config"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"genai-gateway"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	// EnableGemini gates every generative call. Off by default.
	EnableGemini bool `env:"ENABLE_GEMINI" yaml:"enable_gemini"`

	LLM       LLMConfig       `yaml:",inline"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`

	Logging  pkgconfig.LoggingConfig    `yaml:",inline"`
	HTTP     pkgconfig.HTTPServerConfig `yaml:",inline"`
	Metrics  pkgconfig.MetricsConfig    `yaml:",inline"`
	GRPC     GRPCConfig                 `yaml:",inline"`
	Security SecurityConfig             `yaml:",inline"`
}

// GRPCConfig holds the gRPC health listener settings
type GRPCConfig struct {
	// Port of the grpc.health.v1 listener; 0 disables it
	Port int `env:"GRPC_PORT" yaml:"grpc_port" default:"8000"`
}

// Validate validates the configuration and returns an error if invalid
func (c AppConfig) Validate() error {
	var result error

	if err := c.Logging.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("grpc port must be between 0-65535, got %d", c.GRPC.Port))
	}
	if c.Security.MaxRequestSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_size must be greater than 0"))
	}

	if err := c.LLM.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	// Credentials are only needed once the gate is open.
	if c.EnableGemini {
		switch c.LLM.Provider {
		case ProviderGemini:
			if c.Gemini.APIKey == "" && !c.Gemini.UseVertexAI() {
				result = multierror.Append(result, fmt.Errorf("GEMINI_API_KEY is required when enable_gemini is true"))
			}
		case ProviderOpenAI:
			if c.OpenAI.APIKey == "" {
				result = multierror.Append(result, fmt.Errorf("OPENAI_API_KEY is required when enable_gemini is true"))
			}
		case ProviderClaude:
			if c.Anthropic.APIKey == "" {
				result = multierror.Append(result, fmt.Errorf("ANTHROPIC_API_KEY is required when enable_gemini is true"))
			}
		}
	}

	return result
}

// LoggerConfig returns the logger configuration derived from the logging section.
func (c AppConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:   logger.ParseLevel(c.Logging.Level),
		Format:  c.Logging.Format,
		Service: c.ServiceName,
	}
}

// IsProduction returns true if running in production environment
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LogConfig logs the current configuration without secrets
func (c AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("environment", c.Environment),
		logger.BoolField("enable_gemini", c.EnableGemini),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.StringField("model", c.ModelName()),
		logger.IntField("http_port", c.HTTP.Port),
		logger.IntField("grpc_port", c.GRPC.Port),
		logger.BoolField("metrics_exposed", c.Metrics.ExposeMetrics),
		logger.StringField("log_level", c.Logging.Level),
	)
}

// ModelName returns the model configured for the selected provider.
func (c AppConfig) ModelName() string {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderClaude:
		return c.Anthropic.Model
	default:
		return c.Gemini.Model
	}
}
