// Package cli defines the genai-gateway command line.
package cli

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

const (
	appName   = "genai-gateway"
	loggerKey = "logger"
)

// NewApp returns the command line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    appName,
		Usage:   "Flag-guarded generative text gateway",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// stdout is reserved for command output
			log := logger.NewLogger(logger.Config{
				Level:   logger.ParseLevel(ctx.String("log-level")),
				Format:  ctx.String("log-format"),
				Service: appName,
				Output:  os.Stderr,
			})
			if ctx.App.Metadata == nil {
				ctx.App.Metadata = map[string]any{}
			}
			if _, ok := ctx.App.Metadata[loggerKey]; !ok {
				ctx.App.Metadata[loggerKey] = log
			}
			return nil
		},
		Commands: []*cli.Command{
			ConfigCommand(),
			ServerCommand(),
			AskCommand(),
		},
	}
}
