// Package grpcserver publishes the backend's liveness over the standard
// grpc.health.v1 service, guarded by session tokens.
package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the server-wide "".
const ServiceName = "cloudkeeper.Backend"

type Backend interface {
	Authenticate(token string) (auth.Session, error)
	Health(ctx context.Context) error
}

type GRPCServer struct {
	address     string
	backend     Backend
	logger      logging.Logger
	health      *health.Server
	interval    time.Duration
	requireAuth bool
}

func NewGRPCServer(address string, l logging.Logger, b Backend, checkInterval time.Duration, requireAuth bool) *GRPCServer {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	return &GRPCServer{
		address:     address,
		backend:     b,
		logger:      logging.OrDiscard(l).With("module", "grpc_server"),
		health:      health.NewServer(),
		interval:    checkInterval,
		requireAuth: requireAuth,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.refresh(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) refresh(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.backend.Health(ctx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "backend unhealthy", "error", err)
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
