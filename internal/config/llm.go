package config

import (
	"fmt"
	"slices"
)

// LLM provider constants
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLMConfig holds LLM provider selection configuration
type LLMConfig struct {
	// Provider specifies which LLM provider to use: "gemini", "openai", or "claude"
	Provider string `env:"LLM_PROVIDER" yaml:"llm_provider" default:"gemini"`
}

// Validate checks the provider name
func (l LLMConfig) Validate() error {
	if !slices.Contains([]string{ProviderGemini, ProviderOpenAI, ProviderClaude}, l.Provider) {
		return fmt.Errorf("llm_provider must be one of [gemini, openai, claude], got %q", l.Provider)
	}
	return nil
}
