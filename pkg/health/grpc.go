package health

import (
	"context"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// DefaultGRPCUpdateInterval is how often readiness is pushed to the gRPC health service.
const DefaultGRPCUpdateInterval = 5 * time.Second

// GRPCUpdater mirrors readiness into a grpc.health.v1 server.
type GRPCUpdater struct {
	checker  *Checker
	server   *grpchealth.Server
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopped  atomic.Bool
}

// RegisterWithGRPC registers grpc.health.v1.Health on server for the overall
// service ("") and starts updating it from readiness checks.
func (h *Checker) RegisterWithGRPC(server *grpc.Server, interval time.Duration) *GRPCUpdater {
	if interval <= 0 {
		interval = DefaultGRPCUpdateInterval
	}

	hs := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	u := &GRPCUpdater{
		checker:  h,
		server:   hs,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go u.run()

	h.logger.Info("gRPC health service registered", logger.DurationField("update_interval", interval))
	return u
}

func (u *GRPCUpdater) run() {
	defer close(u.done)
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	u.update()
	for {
		select {
		case <-ticker.C:
			u.update()
		case <-u.stop:
			u.server.Shutdown()
			return
		}
	}
}

func (u *GRPCUpdater) update() {
	ctx, cancel := context.WithTimeout(context.Background(), u.interval)
	defer cancel()

	status, err := u.checker.CheckReadiness(ctx)
	if err != nil || !status.Healthy {
		u.server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return
	}
	u.server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
}

// Stop marks the service NOT_SERVING and stops updates. Safe to call twice.
func (u *GRPCUpdater) Stop() {
	if u.stopped.CompareAndSwap(false, true) {
		close(u.stop)
		<-u.done
	}
}
