package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/genai_gateway/internal/flags"
	"github.com/lewisedginton/genai_gateway/internal/gateway"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// AskCommand returns a command that sends one prompt through the gateway.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a single prompt and print the reply",
		ArgsUsage: "<prompt...>",
		Action:    askAction,
	}
}

func askAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load config", logger.ErrorField(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	provider, err := newProvider(ctx.Context, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	gw := gateway.New(flags.NewStore(cfg.EnableGemini), provider, gateway.WithLogger(log))

	text, err := gw.Ask(ctx.Context, strings.Join(ctx.Args().Slice(), " "))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(ctx.App.Writer, text)
	return nil
}
