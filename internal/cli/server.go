package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/genai_gateway/internal/flags"
	"github.com/lewisedginton/genai_gateway/internal/gateway"
	"github.com/lewisedginton/genai_gateway/internal/server"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
	"github.com/lewisedginton/genai_gateway/pkg/metrics"
	"github.com/lewisedginton/genai_gateway/pkg/utils"
)

// ServerCommand returns a command for server operations
func ServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Server operations",
		Subcommands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start the gateway HTTP and gRPC listeners",
				Action: serverStartAction,
			},
		},
	}
}

//nolint:revive // cognitive-complexity: startup wires several listeners in sequence
func serverStartAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load config", logger.ErrorField(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.LogConfig(log)

	provider, err := newProvider(ctx.Context, cfg, log)
	if err != nil {
		log.Error("Failed to create provider", logger.ErrorField(err))
		return fmt.Errorf("failed to create provider: %w", err)
	}

	store := flags.NewStore(cfg.EnableGemini)
	m := metrics.NewMetrics(cfg.Metrics.EnableHTTPMetrics, cfg.Metrics.EnableGrpcMetrics, log)
	gw := gateway.New(store, provider, gateway.WithLogger(log), gateway.WithRecorder(m))

	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	if path := ctx.String("config-file"); path != "" {
		w, err := flags.NewWatcher(path, store, log)
		if err != nil {
			return fmt.Errorf("failed to watch config file: %w", err)
		}
		go func() {
			if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Flag watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	var metricsErrs chan error
	stopMetrics := func(context.Context) error { return nil }
	if cfg.Metrics.ExposeMetrics {
		metricsErrs, stopMetrics = m.Listen(cfg.Metrics.Port)
	}

	s := server.New(*cfg, gw, store, m, log)
	errChan, closer, gracefulCloser, err := s.Listen()
	if err != nil {
		log.Error("Failed to start server", logger.ErrorField(err))
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Gateway started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	mergedErrChan := utils.MergeErrorChans(errChan, metricsErrs)

	shutdownMetrics := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := stopMetrics(shutdownCtx); err != nil {
			log.Error("Error stopping metrics listener", logger.ErrorField(err))
		}
	}

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.StringField("signal", sig.String()))
		gracefulCloser()
		shutdownMetrics()
		log.Info("Server exited gracefully")
	case <-ctx.Context.Done():
		gracefulCloser()
		shutdownMetrics()
		log.Info("Server exited gracefully")
	case err := <-mergedErrChan:
		if err != nil {
			log.Error("Fatal server error occurred", logger.ErrorField(err))
			closer()
			shutdownMetrics()
			return fmt.Errorf("server error: %w", err)
		}
		log.Info("Server exited normally")
	}

	return nil
}
