package blobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
)

const (
	// ChunkSize bounds the value size of a single Badger entry. It must stay
	// below valueThreshold: in-memory databases have no value log, so every
	// value has to fit in the LSM tree.
	ChunkSize = 512 << 10

	valueThreshold = 1 << 20
)

type blobMeta struct {
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Chunks      int    `json:"chunks"`
}

// BadgerStore keeps each blob as a metadata entry plus fixed-size chunk
// entries under "blob:<key>:".
type BadgerStore struct {
	db        *badger.DB
	publicURL string
}

// OpenBadger opens a store in dir, or an in-memory one when dir is empty.
// publicURL, when set, is the base of the gateway that serves blobs.
func OpenBadger(dir, publicURL string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR).
		WithValueThreshold(valueThreshold)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &BadgerStore{db: db, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func metaKey(key string) []byte { return []byte("blob:" + key + ":meta") }

func chunkKey(key string, i int) []byte {
	return []byte(fmt.Sprintf("blob:%s:chunk:%08d", key, i))
}

func (s *BadgerStore) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	prev, err := s.meta(key)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	var (
		meta = blobMeta{ContentType: contentType}
		buf  = make([]byte, ChunkSize)
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := io.ReadFull(body, buf)
		if n > 0 {
			if err := wb.Set(chunkKey(key, meta.Chunks), bytes.Clone(buf[:n])); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
			meta.Chunks++
			meta.Size += int64(n)
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read body: %w", rerr)
		}
	}

	if prev != nil {
		for i := meta.Chunks; i < prev.Chunks; i++ {
			if err := wb.Delete(chunkKey(key, i)); err != nil {
				return err
			}
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := wb.Set(metaKey(key), data); err != nil {
		return err
	}

	return wb.Flush()
}

func (s *BadgerStore) meta(key string) (*blobMeta, error) {
	var m blobMeta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &m)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (*Object, error) {
	var (
		m   blobMeta
		buf bytes.Buffer
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(key))
		if err != nil {
			return err
		}
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &m) }); err != nil {
			return err
		}

		buf.Grow(int(m.Size))
		for i := 0; i < m.Chunks; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(chunkKey(key, i))
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			if err := item.Value(func(v []byte) error {
				_, err := buf.Write(v)
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	return &Object{
		Body:        io.NopCloser(&buf),
		Size:        m.Size,
		ContentType: m.ContentType,
	}, nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	m, err := s.meta(key)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i := 0; i < m.Chunks; i++ {
		if err := wb.Delete(chunkKey(key, i)); err != nil {
			return err
		}
	}
	if err := wb.Delete(metaKey(key)); err != nil {
		return err
	}
	return wb.Flush()
}

func (s *BadgerStore) URL(_ context.Context, key string) (string, error) {
	if s.publicURL == "" {
		return "badger://blobs/" + key, nil
	}
	return s.publicURL + "/v1/blobs/" + key, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
