// Package client holds the session and liveness pieces of the CloudKeeper
// client.
//
// # Session
//
// The backend issues a bearer token (an HS256 JWT) per account. The client
// never verifies it; SessionFromToken only extracts the account and owner the
// uploads are attributed to.
//
// # Liveness
//
// Prober implementations report whether the backend is reachable:
//
//   - GRPCHealthProbe speaks the standard grpc.health.v1 protocol.
//   - HealthFunc adapts any Health(ctx) error method, such as the REST
//     gateway store or the embedded backend.
//
// Transport failures map to the sentinel errors in internal/common
// (ErrUnavailable, ErrUnauthorized) so callers can match them with errors.Is.
package client
