package cryptox

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest_MatchesDigestBytes(t *testing.T) {
	payload := []byte("the quick brown fox")

	got, n, err := Digest(bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)
	require.Equal(t, DigestBytes(payload), got)
	require.Len(t, got, 64)
}

func TestDigest_DifferentInputs(t *testing.T) {
	require.NotEqual(t, DigestBytes([]byte("a")), DigestBytes([]byte("b")))
}

func TestDigest_EmptySnapshot(t *testing.T) {
	// BLAKE2b-256 of the empty string.
	require.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", DigestBytes(nil))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestDigest_ReadError(t *testing.T) {
	_, _, err := Digest(failingReader{})
	require.Error(t, err)
}

func TestDigestReader(t *testing.T) {
	src := "streamed content"
	dr := NewDigestReader(strings.NewReader(src))

	b, err := io.ReadAll(dr)
	require.NoError(t, err)
	require.Equal(t, src, string(b))
	require.Equal(t, int64(len(src)), dr.Count())
	require.Equal(t, DigestBytes([]byte(src)), dr.Sum())
}
