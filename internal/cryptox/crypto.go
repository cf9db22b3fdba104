package cryptox

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digest consumes r and returns the hex-encoded BLAKE2b-256 sum of its
// contents together with the number of bytes read.
func Digest(r io.Reader) (string, int64, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, fmt.Errorf("blake2b: %w", err)
	}
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// DigestBytes is Digest for an in-memory payload.
func DigestBytes(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DigestReader tees everything read through it into a BLAKE2b-256 hash.
type DigestReader struct {
	r io.Reader
	h interface {
		io.Writer
		Sum([]byte) []byte
	}
	n int64
}

func NewDigestReader(r io.Reader) *DigestReader {
	h, _ := blake2b.New256(nil)
	return &DigestReader{r: r, h: h}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		_, _ = d.h.Write(p[:n])
		d.n += int64(n)
	}
	return n, err
}

// Sum returns the hex digest of the bytes read so far.
func (d *DigestReader) Sum() string { return hex.EncodeToString(d.h.Sum(nil)) }

// Count returns the number of bytes read so far.
func (d *DigestReader) Count() int64 { return d.n }
