// Package metrics provides Prometheus metrics for the gateway and its HTTP and gRPC listeners.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

const (
	subsystem = "app"
)

var durationBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0, 30.0}

// Metrics owns a private registry. HTTP and gRPC collectors are optional;
// gateway counters are always registered.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPResponsesCounter     *prometheus.CounterVec
	HTTPDurationHistogram    prometheus.Histogram

	TotalGrpcRequestsCounter prometheus.Counter
	GrpcResponsesCounter     *prometheus.CounterVec
	GrpcDurationHistogram    prometheus.Histogram

	AsksCounter           *prometheus.CounterVec
	DisabledCounter       prometheus.Counter
	ProviderErrorsCounter *prometheus.CounterVec

	log logger.Logger
}

// NewMetrics creates a Metrics instance with the requested collectors enabled.
func NewMetrics(httpCounters, grpcCounters bool, l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}

	m.AsksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "gateway_asks_total",
		Help:      "Prompts forwarded to a provider",
	}, []string{"provider"})
	m.DisabledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "gateway_disabled_total",
		Help:      "Prompts short-circuited because enable_gemini is off",
	})
	m.ProviderErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "gateway_provider_errors_total",
		Help:      "Provider calls that returned an error",
	}, []string{"provider"})
	m.reg.MustRegister(m.AsksCounter, m.DisabledCounter, m.ProviderErrorsCounter)

	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.HTTPResponsesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "http_responses_total",
			Help:      "HTTP responses by status code",
		}, []string{"code"})
		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   durationBuckets,
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter, m.HTTPResponsesCounter, m.HTTPDurationHistogram)
	}

	if grpcCounters {
		m.TotalGrpcRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_grpc_requests",
			Help:      "Total gRPC requests",
		})
		m.GrpcResponsesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "grpc_responses_total",
			Help:      "gRPC responses by status code",
		}, []string{"code"})
		m.GrpcDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration in seconds",
			Buckets:   durationBuckets,
		})
		m.reg.MustRegister(m.TotalGrpcRequestsCounter, m.GrpcResponsesCounter, m.GrpcDurationHistogram)
	}

	return m
}

// IncAsk counts a prompt forwarded to provider.
func (m *Metrics) IncAsk(provider string) {
	m.AsksCounter.WithLabelValues(provider).Inc()
}

// IncDisabled counts a short-circuited prompt.
func (m *Metrics) IncDisabled() {
	m.DisabledCounter.Inc()
}

// IncProviderError counts a failed provider call.
func (m *Metrics) IncProviderError(provider string) {
	m.ProviderErrorsCounter.WithLabelValues(provider).Inc()
}

// AddCustomMetric registers an extra collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.reg.MustRegister(c)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the /metrics listener. The returned channel receives a
// listener failure; the returned func shuts the listener down.
func (m *Metrics) Listen(port int) (chan error, func(context.Context) error) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))

	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	return errChan, func(ctx context.Context) error {
		m.log.Info("Stopping metrics listener")
		return server.Shutdown(ctx)
	}
}

// GrpcRequestsInterceptor records gRPC request counts, codes and durations.
func (m *Metrics) GrpcRequestsInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	if m.TotalGrpcRequestsCounter == nil {
		return handler(ctx, req)
	}

	start := time.Now()
	m.TotalGrpcRequestsCounter.Inc()

	resp, err := handler(ctx, req)

	m.GrpcDurationHistogram.Observe(time.Since(start).Seconds())
	m.GrpcResponsesCounter.WithLabelValues(status.Code(err).String()).Inc()
	return resp, err
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics.
// It is a pass-through when HTTP metrics are disabled.
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.TotalHTTPRequestsCounter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.HTTPResponsesCounter.WithLabelValues(strconv.Itoa(rw.statusCode)).Inc()
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
