package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Prober checks backend reachability.
type Prober interface {
	Probe(ctx context.Context) error
}

// HealthFunc adapts a health-check function to Prober.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Probe(ctx context.Context) error { return f(ctx) }

// GRPCHealthProbe queries a grpc.health.v1 endpoint.
type GRPCHealthProbe struct {
	endpointURL string
	service     string
	accessToken string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      healthpb.HealthClient
}

func NewGRPCHealthProbe(endpointURL, service, accessToken string) (*GRPCHealthProbe, error) {
	p := &GRPCHealthProbe{
		endpointURL: endpointURL,
		service:     service,
		accessToken: accessToken,
		timeout:     5 * time.Second,
	}

	conn, err := grpc.NewClient(p.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(p.accessTokenInterceptor))
	if err != nil {
		return nil, err
	}
	p.conn = conn
	p.client = healthpb.NewHealthClient(conn)
	return p, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (p *GRPCHealthProbe) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if p.accessToken != "" {
		ctx = withAccessToken(ctx, p.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (p *GRPCHealthProbe) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", common.ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func (p *GRPCHealthProbe) Close() error {
	return p.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
