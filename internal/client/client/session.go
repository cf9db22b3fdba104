package client

import (
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
)

// SessionFromToken extracts the identity carried by a session token.
func SessionFromToken(token string) (auth.Session, error) {
	if token == "" {
		return auth.Session{}, common.ErrUnauthorized
	}
	return auth.ParseUnverified(token)
}

// Expired reports whether s has an expiry at or before now.
func Expired(s auth.Session, now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
