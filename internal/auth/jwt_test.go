package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

var testSession = Session{AccountID: "acct-1", OwnerID: "user-123", OwnerName: "Jane"}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken(testSession, secret, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(tok, secret)
	require.NoError(t, err)
	require.Equal(t, testSession.AccountID, got.AccountID)
	require.Equal(t, testSession.OwnerID, got.OwnerID)
	require.Equal(t, testSession.OwnerName, got.OwnerName)
	require.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken(testSession, secret, -1*time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(testSession, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	require.True(t, errors.Is(err, common.ErrInvalidToken), err)
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	require.True(t, errors.Is(err, common.ErrInvalidToken), err)
}

func TestParseToken_MissingAccount(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken(Session{OwnerID: "u"}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseUnverified(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(testSession, []byte("server-only"), time.Hour)
	require.NoError(t, err)

	got, err := ParseUnverified(tok)
	require.NoError(t, err)
	require.Equal(t, "acct-1", got.AccountID)
	require.Equal(t, "user-123", got.OwnerID)

	_, err = ParseUnverified("garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
