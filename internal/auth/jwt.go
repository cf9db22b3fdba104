package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Session identifies who acts and on which account's storage.
type Session struct {
	AccountID string
	OwnerID   string
	OwnerName string
	ExpiresAt time.Time
}

// Claims are the registered claims plus the session identity.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name,omitempty"`
}

func (c *Claims) session() Session {
	s := Session{AccountID: c.AccountID, OwnerID: c.OwnerID, OwnerName: c.OwnerName}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

func GenerateToken(s Session, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.OwnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: s.AccountID,
		OwnerID:   s.OwnerID,
		OwnerName: s.OwnerName,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, common.ErrTokenExpired
		}
		return Session{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.AccountID == "" {
		return Session{}, common.ErrInvalidToken
	}

	return claims.session(), nil
}

// ParseUnverified reads the session out of tokenString without checking the
// signature. Clients use it to learn their own identity; it grants nothing.
func ParseUnverified(tokenString string) (Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.AccountID == "" {
		return Session{}, common.ErrInvalidToken
	}
	return claims.session(), nil
}
