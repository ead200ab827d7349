// Package server exposes the gateway over HTTP and serves gRPC health.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"

	appconfig "github.com/lewisedginton/genai_gateway/internal/config"
	"github.com/lewisedginton/genai_gateway/internal/flags"
	"github.com/lewisedginton/genai_gateway/pkg/health"
	"github.com/lewisedginton/genai_gateway/pkg/httpmiddleware"
	"github.com/lewisedginton/genai_gateway/pkg/logger"
	"github.com/lewisedginton/genai_gateway/pkg/metrics"
	"github.com/lewisedginton/genai_gateway/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// Gateway is the part of gateway.Gateway the HTTP surface needs.
type Gateway interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Enabled() bool
	ProviderName() string
}

// FlagReader exposes the current flag values.
type FlagReader interface {
	Snapshot() flags.Flags
}

// Server owns the HTTP listener and the optional gRPC health listener.
type Server struct {
	cfg     appconfig.AppConfig
	log     logger.Logger
	gw      Gateway
	flags   FlagReader
	metrics *metrics.Metrics
	checker *health.Checker

	httpServer  *http.Server
	grpcServer  *grpc.Server
	grpcUpdater *health.GRPCUpdater
}

// New wires the router, health checks and, when grpc_port is set, the gRPC server.
// Nothing listens until Listen is called.
func New(cfg appconfig.AppConfig, gw Gateway, fl FlagReader, m *metrics.Metrics, log logger.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		gw:      gw,
		flags:   fl,
		metrics: m,
	}

	s.checker = health.New(health.WithLogger(log))
	s.checker.AddReadinessCheck(health.NewCheckFunc("provider", s.providerReady))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout(),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout(),
		WriteTimeout:      cfg.HTTP.WriteTimeout(),
		IdleTimeout:       cfg.HTTP.IdleTimeout(),
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}

	if cfg.GRPC.Port > 0 {
		s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
			log.GrpcRequestsInterceptor,
			m.GrpcRequestsInterceptor,
		))
	}

	log.Info("Gateway server initialized",
		logger.IntField("http_port", cfg.HTTP.Port),
		logger.IntField("grpc_port", cfg.GRPC.Port),
		logger.BoolField("enable_gemini", gw.Enabled()),
		logger.StringField("provider", gw.ProviderName()))

	return s
}

// Handler returns the HTTP routes with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	mw := httpmiddleware.DefaultConfig()
	mw.Logger = s.log
	mw.EnableLogging = true
	mw.Metrics = s.metrics.HTTPMiddleware()
	mw.Timeout = s.cfg.HTTP.WriteTimeout()
	if len(s.cfg.Security.CORSAllowedOrigins) > 0 {
		mw.CORS.AllowedOrigins = s.cfg.Security.CORSAllowedOrigins
	}
	httpmiddleware.ApplyToRouter(r, mw)

	r.Get("/healthz", s.checker.LivenessHandler())
	r.Get("/readyz", s.checker.ReadinessHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.askHandler)
		r.Get("/flags", s.flagsHandler)
	})

	return r
}

// providerReady fails while the switch is on and no provider is configured.
func (s *Server) providerReady(context.Context) error {
	if s.gw.Enabled() && s.gw.ProviderName() == "" {
		return errors.New("enable_gemini is on but no provider is configured")
	}
	return nil
}

// Listen starts the HTTP listener and, if configured, the gRPC listener.
// It returns a channel of listener errors, a forceful closer and a graceful closer.
func (s *Server) Listen() (chan error, func(), func(), error) {
	var grpcErrs chan error
	if s.grpcServer != nil {
		s.grpcUpdater = s.checker.RegisterWithGRPC(s.grpcServer, health.DefaultGRPCUpdateInterval)
		var err error
		grpcErrs, _, err = utils.ListenGRPC(s.grpcServer, s.cfg.GRPC.Port, s.log)
		if err != nil {
			s.grpcUpdater.Stop()
			return nil, nil, nil, fmt.Errorf("failed to start gRPC listener: %w", err)
		}
	}

	httpErrs := make(chan error, 1)
	go func() {
		defer close(httpErrs)
		s.log.Info("Starting HTTP server", logger.StringField("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrs <- err
		}
	}()

	closer := func() {
		s.log.Info("Forcefully closing listeners")
		s.stopGRPC(false)
		if err := s.httpServer.Close(); err != nil {
			s.log.Error("Error during forced shutdown", logger.ErrorField(err))
		}
	}

	gracefulCloser := func() {
		s.log.Info("Gracefully closing listeners")
		if err := s.GracefulShutdown(); err != nil {
			s.log.Error("Error during graceful shutdown", logger.ErrorField(err))
		}
	}

	return utils.MergeErrorChans(httpErrs, grpcErrs), closer, gracefulCloser, nil
}

// GracefulShutdown drains in-flight requests before returning.
func (s *Server) GracefulShutdown() error {
	s.stopGRPC(true)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

func (s *Server) stopGRPC(graceful bool) {
	if s.grpcServer == nil {
		return
	}
	if s.grpcUpdater != nil {
		s.grpcUpdater.Stop()
	}
	if graceful {
		s.grpcServer.GracefulStop()
		return
	}
	s.grpcServer.Stop()
}
