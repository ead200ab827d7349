package utils

import (
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// ListenGRPC serves s on listenPort in the background. The returned channel
// receives a serve failure and is closed when the server stops; the returned
// func stops the server gracefully.
func ListenGRPC(s *grpc.Server, listenPort int, log logger.Logger) (chan error, func(), error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", listenPort)) //nolint:noctx // gRPC server manages listener lifecycle
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on port %d: %w", listenPort, err)
	}
	return ServeGRPC(s, lis, log), s.GracefulStop, nil
}

// ServeGRPC serves s on an existing listener in the background.
func ServeGRPC(s *grpc.Server, lis net.Listener, log logger.Logger) chan error {
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Info("Starting gRPC server", logger.StringField("address", lis.Addr().String()))
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- err
		}
	}()
	return errChan
}
