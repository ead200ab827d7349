package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/genai_gateway/internal/config"
	"github.com/lewisedginton/genai_gateway/internal/gateway"
	"github.com/lewisedginton/genai_gateway/internal/providers"
	"github.com/lewisedginton/genai_gateway/pkg/config"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// getLogger retrieves the logger from the CLI context metadata
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata[loggerKey].(logger.Logger); ok {
			return log
		}
	}
	return logger.NewLogger(logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Service: appName,
	})
}

// loadConfig reads --config-file when given, otherwise environment only.
func loadConfig(ctx *cli.Context) (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if err := config.GetConfig(cfg, ctx.String("config-file"), false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newProvider builds the configured provider. While enable_gemini is off a
// construction failure only leaves the gateway without a provider.
func newProvider(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger) (gateway.Provider, error) {
	p, err := providers.New(ctx, *cfg, log)
	if err == nil {
		return p, nil
	}
	if cfg.EnableGemini {
		return nil, err
	}
	log.Warn("Provider not configured; requests will fail if enable_gemini is turned on",
		logger.StringField("llm_provider", cfg.LLM.Provider),
		logger.ErrorField(err))
	return nil, nil
}
