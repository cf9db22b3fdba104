package grpcserver

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var checkInfo = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func newTestServer(requireAuth bool) *GRPCServer {
	return NewGRPCServer("", logging.Discard(), &fakeBackend{}, time.Second, requireAuth)
}

func withBearer(tok string) context.Context {
	md := metadata.New(map[string]string{
		common.AuthorizationHeaderName: common.BearerPrefix + tok,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(true)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, checkInfo, h)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(false)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called with a bad token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withBearer("not-a-valid-jwt"), nil, checkInfo, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid token", status.Convert(err).Message())
}

func TestInterceptor_ValidTokenAttachesSession(t *testing.T) {
	s := newTestServer(true)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		sess, ok := SessionFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "acc-1", sess.AccountID)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withBearer(token(t)), nil, checkInfo, h)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_AnonymousWhenNotRequired(t *testing.T) {
	s := newTestServer(false)

	called := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		_, ok := SessionFromContext(ctx)
		assert.False(t, ok)
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, checkInfo, h)
	require.NoError(t, err)
	assert.True(t, called)
}
