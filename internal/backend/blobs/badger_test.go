package blobs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T, publicURL string) *BadgerStore {
	t.Helper()
	s, err := OpenBadger("", publicURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readAll(t *testing.T, o *Object) []byte {
	t.Helper()
	defer o.Body.Close()
	b, err := io.ReadAll(o.Body)
	require.NoError(t, err)
	return b
}

func TestBadger_PutGetChunked(t *testing.T) {
	ctx := context.Background()
	s := openBadger(t, "")

	data := bytes.Repeat([]byte("0123456789"), ChunkSize/4)
	require.NoError(t, s.Put(ctx, "k1", bytes.NewReader(data), int64(len(data)), "text/plain"))

	m, err := s.meta("k1")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Chunks)

	o, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), o.Size)
	assert.Equal(t, "text/plain", o.ContentType)
	assert.Equal(t, data, readAll(t, o))
}

func TestBadger_OverwriteShrinks(t *testing.T) {
	ctx := context.Background()
	s := openBadger(t, "")

	big := bytes.Repeat([]byte{'x'}, 2*ChunkSize+1)
	require.NoError(t, s.Put(ctx, "k", bytes.NewReader(big), 0, ""))
	require.NoError(t, s.Put(ctx, "k", strings.NewReader("small"), 0, "text/plain"))

	o, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "small", string(readAll(t, o)))

	m, err := s.meta("k")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Chunks)

	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(chunkKey("k", 1))
		return err
	})
	require.ErrorIs(t, err, badger.ErrKeyNotFound)
}

func TestBadger_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	s := openBadger(t, "")

	require.NoError(t, s.Put(ctx, "empty", strings.NewReader(""), 0, ""))
	o, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, o.Size)
	assert.Empty(t, readAll(t, o))
}

func TestBadger_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openBadger(t, "")

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", strings.NewReader("data"), 4, ""))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "k"))
}

func TestBadger_PutHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := openBadger(t, "")
	err := s.Put(ctx, "k", strings.NewReader("data"), 4, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBadger_URL(t *testing.T) {
	ctx := context.Background()

	u, err := openBadger(t, "").URL(ctx, "accounts/a/1")
	require.NoError(t, err)
	assert.Equal(t, "badger://blobs/accounts/a/1", u)

	u, err = openBadger(t, "http://127.0.0.1:8080/").URL(ctx, "accounts/a/1")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/v1/blobs/accounts/a/1", u)
}

func TestNewKey(t *testing.T) {
	now := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	k1 := NewKey("acc/1", now)
	k2 := NewKey("acc/1", now)

	assert.True(t, strings.HasPrefix(k1, "accounts/acc%2F1/2024/02/03/"), k1)
	assert.NotEqual(t, k1, k2)
}

func TestBadger_InMemoryAboveValueThreshold(t *testing.T) {
	require.Less(t, ChunkSize, valueThreshold)

	ctx := context.Background()
	s := openBadger(t, "")

	data := bytes.Repeat([]byte{'v'}, 3*valueThreshold+7)
	require.NoError(t, s.Put(ctx, "large", bytes.NewReader(data), int64(len(data)), "application/pdf"))

	o, err := s.Get(ctx, "large")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), o.Size)
	assert.Equal(t, data, readAll(t, o))
}
