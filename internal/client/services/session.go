package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/client"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
)

// SessionService tracks the bearer session and backend reachability.
//
// Contract:
//   - Login: adopt a token; the identity it carries becomes the current session.
//   - Current: the session, or ErrUnauthorized / ErrTokenExpired.
//   - Ping: probe the backend.
//   - Close: release the prober.
type SessionService interface {
	Login(token string) (auth.Session, error)
	Current() (auth.Session, error)
	Token() string
	Ping(ctx context.Context) error
	Close() error
}

type sessionService struct {
	prober client.Prober
	now    func() time.Time

	mu      sync.RWMutex
	token   string
	session auth.Session
}

// NewSessionService constructs a SessionService probing through prober.
// A nil now uses time.Now.
func NewSessionService(prober client.Prober, now func() time.Time) SessionService {
	if now == nil {
		now = time.Now
	}
	return &sessionService{prober: prober, now: now}
}

func (s *sessionService) Login(token string) (auth.Session, error) {
	sess, err := client.SessionFromToken(token)
	if err != nil {
		return auth.Session{}, fmt.Errorf("login: %w", err)
	}
	if client.Expired(sess, s.now()) {
		return auth.Session{}, fmt.Errorf("login: %w", common.ErrTokenExpired)
	}

	s.mu.Lock()
	s.token, s.session = token, sess
	s.mu.Unlock()
	return sess, nil
}

func (s *sessionService) Current() (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return auth.Session{}, common.ErrUnauthorized
	}
	if client.Expired(s.session, s.now()) {
		return s.session, common.ErrTokenExpired
	}
	return s.session, nil
}

func (s *sessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Ping proxies a liveness check to the prober.
func (s *sessionService) Ping(ctx context.Context) error {
	if s.prober == nil {
		return nil
	}
	return s.prober.Probe(ctx)
}

func (s *sessionService) Close() error {
	if c, ok := s.prober.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
