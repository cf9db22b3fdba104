package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/client"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingProber struct {
	client.Prober
	closed bool
}

func (p *closingProber) Close() error {
	p.closed = true
	return nil
}

func mint(t *testing.T, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Session{AccountID: "acc-1", OwnerID: "u-1", OwnerName: "Ann"}, []byte("k"), ttl)
	require.NoError(t, err)
	return tok
}

func TestSessionService_LoginAndCurrent(t *testing.T) {
	now := time.Now()
	svc := NewSessionService(nil, func() time.Time { return now })

	_, err := svc.Current()
	require.ErrorIs(t, err, common.ErrUnauthorized)

	tok := mint(t, time.Hour)
	sess, err := svc.Login(tok)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.AccountID)
	assert.Equal(t, tok, svc.Token())

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "Ann", cur.OwnerName)

	now = now.Add(2 * time.Hour)
	_, err = svc.Current()
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestSessionService_LoginRejects(t *testing.T) {
	svc := NewSessionService(nil, func() time.Time { return time.Now().Add(48 * time.Hour) })

	_, err := svc.Login("")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(mint(t, time.Hour))
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Empty(t, svc.Token())
}

func TestSessionService_PingAndClose(t *testing.T) {
	p := &closingProber{Prober: client.HealthFunc(func(context.Context) error { return common.ErrUnavailable })}
	svc := NewSessionService(p, nil)

	require.ErrorIs(t, svc.Ping(context.Background()), common.ErrUnavailable)
	require.NoError(t, svc.Close())
	assert.True(t, p.closed)

	require.NoError(t, NewSessionService(nil, nil).Ping(context.Background()))
	require.NoError(t, NewSessionService(nil, nil).Close())
}
