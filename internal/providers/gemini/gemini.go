// Package gemini implements gateway.Provider on top of the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Config describes how to reach Gemini.
type Config struct {
	APIKey  string
	Model   string
	Project string // Vertex AI, used together with Region
	Region  string
	Timeout time.Duration
	BaseURL string // override for tests and proxies
}

// Provider sends single-turn text prompts to a Gemini model.
type Provider struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// New creates a Gemini provider. The Vertex AI backend is used when both
// Project and Region are set, otherwise an API key is required.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Model == "" {
		return nil, errors.New("gemini model name is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" && cfg.Region != "" {
		clientConfig.APIKey = ""
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Region
	} else if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// Model returns the configured model.
func (p *Provider) Model() string {
	return p.model
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}
