// Package providers builds the generative-text provider selected in configuration.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lewisedginton/genai_gateway/internal/config"
	"github.com/lewisedginton/genai_gateway/internal/gateway"
	"github.com/lewisedginton/genai_gateway/internal/providers/anthropic"
	"github.com/lewisedginton/genai_gateway/internal/providers/gemini"
	"github.com/lewisedginton/genai_gateway/internal/providers/openai"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// ErrUnsupportedProvider is returned for unknown llm_provider values.
var ErrUnsupportedProvider = errors.New("unsupported LLM provider")

// New creates the provider named by cfg.LLM.Provider.
func New(ctx context.Context, cfg config.AppConfig, log logger.Logger) (gateway.Provider, error) {
	provider := strings.ToLower(cfg.LLM.Provider)

	switch provider {
	case config.ProviderGemini:
		log.Info("Initializing Gemini provider",
			logger.StringField("model", cfg.Gemini.Model),
			logger.BoolField("vertex_ai", cfg.Gemini.UseVertexAI()))
		return wrap(gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Project: cfg.Gemini.Project,
			Region:  cfg.Gemini.Region,
			Timeout: cfg.Gemini.Timeout,
		}))

	case config.ProviderOpenAI:
		log.Info("Initializing OpenAI provider",
			logger.StringField("model", cfg.OpenAI.Model))
		return wrap(openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.APIBaseURL,
			Timeout: cfg.OpenAI.Timeout,
		}))

	case config.ProviderClaude:
		log.Info("Initializing Claude provider",
			logger.StringField("model", cfg.Anthropic.Model))
		return wrap(anthropic.New(anthropic.Config{
			APIKey:    cfg.Anthropic.APIKey,
			Model:     cfg.Anthropic.Model,
			BaseURL:   cfg.Anthropic.APIBaseURL,
			MaxTokens: cfg.Anthropic.MaxTokens,
			Timeout:   cfg.Anthropic.Timeout,
		}))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// wrap keeps a failed constructor's typed nil out of the interface.
func wrap(p gateway.Provider, err error) (gateway.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
