package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/client"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

var secret = []byte("secret")

type fakeBackend struct {
	down atomic.Bool
}

func (f *fakeBackend) Authenticate(token string) (auth.Session, error) {
	return auth.ParseToken(token, secret)
}

func (f *fakeBackend) Health(context.Context) error {
	if f.down.Load() {
		return common.ErrUnavailable
	}
	return nil
}

func token(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Session{AccountID: "acc-1", OwnerID: "u-1"}, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func serve(t *testing.T, b Backend, requireAuth bool) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewGRPCServer("", logging.Discard(), b, 20*time.Millisecond, requireAuth)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return lis.Addr().String()
}

func probe(t *testing.T, addr, tok string) *client.GRPCHealthProbe {
	t.Helper()
	p, err := client.NewGRPCHealthProbe(addr, ServiceName, tok)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Discard(), &fakeBackend{}, time.Second, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Discard(), &fakeBackend{}, time.Second, true)
	require.Error(t, srv.Run(context.Background()))
}

func TestProbe_Serving(t *testing.T) {
	addr := serve(t, &fakeBackend{}, true)

	require.NoError(t, probe(t, addr, token(t)).Probe(context.Background()))
}

func TestProbe_RequiresToken(t *testing.T) {
	addr := serve(t, &fakeBackend{}, true)

	err := probe(t, addr, "").Probe(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)

	err = probe(t, addr, "garbage").Probe(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestProbe_AnonymousAllowed(t *testing.T) {
	addr := serve(t, &fakeBackend{}, false)

	require.NoError(t, probe(t, addr, "").Probe(context.Background()))
}

func TestProbe_ReportsNotServing(t *testing.T) {
	b := &fakeBackend{}
	addr := serve(t, b, true)
	p := probe(t, addr, token(t))

	require.NoError(t, p.Probe(context.Background()))

	b.down.Store(true)
	require.Eventually(t, func() bool {
		return errors.Is(p.Probe(context.Background()), common.ErrUnavailable)
	}, 2*time.Second, 20*time.Millisecond)

	b.down.Store(false)
	require.Eventually(t, func() bool {
		return p.Probe(context.Background()) == nil
	}, 2*time.Second, 20*time.Millisecond)
}
