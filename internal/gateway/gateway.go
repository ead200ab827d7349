// Package gateway guards generative-text calls behind the enable_gemini switch.
//
// While the switch is off, Ask logs a single warning and returns the empty
// string without touching the provider. While it is on, the prompt is handed
// to the configured Provider unchanged.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// DisabledMessage is logged at warn level for every call made while the switch is off.
// The log line is subject to the configured level; app_gateway_disabled_total
// counts every such call regardless.
const DisabledMessage = "Gemini disabled. Returning empty string."

var (
	// ErrNoProvider is returned when the switch is on but no provider was configured.
	ErrNoProvider = errors.New("generative provider not configured")
	// ErrProviderFailed wraps every error returned by a provider.
	ErrProviderFailed = errors.New("generative provider call failed")
)

// FlagSource exposes the switch. It is read on every call.
type FlagSource interface {
	GeminiEnabled() bool
}

// Provider is an external generative-text service.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives per-call counters.
type Recorder interface {
	IncAsk(provider string)
	IncDisabled()
	IncProviderError(provider string)
}

type nopRecorder struct{}

func (nopRecorder) IncAsk(string)           {}
func (nopRecorder) IncDisabled()            {}
func (nopRecorder) IncProviderError(string) {}

// Gateway is the single entry point for generative calls.
type Gateway struct {
	flags    FlagSource
	provider Provider
	log      logger.Logger
	recorder Recorder
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for the disabled diagnostic and provider errors.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		g.log = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		g.recorder = r
	}
}

// New builds a Gateway. provider may be nil when the switch is expected to stay off.
func New(flags FlagSource, provider Provider, opts ...Option) *Gateway {
	g := &Gateway{
		flags:    flags,
		provider: provider,
		log:      logger.NewNopLogger(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports the switch as the next Ask will see it.
func (g *Gateway) Enabled() bool {
	return g.flags.GeminiEnabled()
}

// ProviderName returns the configured provider's name, or "" if none.
func (g *Gateway) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Ask returns generated text for prompt. With the switch off it always
// returns "", nil. The prompt is not validated.
func (g *Gateway) Ask(ctx context.Context, prompt string) (string, error) {
	if !g.flags.GeminiEnabled() {
		logger.FromContext(ctx, g.log).Warn(DisabledMessage)
		g.recorder.IncDisabled()
		return "", nil
	}

	if g.provider == nil {
		return "", ErrNoProvider
	}

	name := g.provider.Name()
	g.recorder.IncAsk(name)

	text, err := g.provider.Generate(ctx, prompt)
	if err != nil {
		g.recorder.IncProviderError(name)
		logger.FromContext(ctx, g.log).Error("Provider call failed",
			logger.StringField("provider", name),
			logger.IntField("prompt_length", len(prompt)),
			logger.ErrorField(err),
		)
		return "", fmt.Errorf("%w: %s: %w", ErrProviderFailed, name, err)
	}
	return text, nil
}
