// Package blobs stores uploaded file contents. Two implementations exist:
// an S3-compatible object store and a chunked Badger key-value store.
package blobs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Object is a stored blob opened for reading. Callers close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type Store interface {
	// Put stores size bytes read from body under key, replacing any
	// previous content.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	// URL returns a link under which the blob can be retrieved.
	URL(ctx context.Context, key string) (string, error)
	Close() error
}

// NewKey returns a fresh, date-partitioned storage key for accountID.
func NewKey(accountID string, now time.Time) string {
	return fmt.Sprintf("accounts/%s/%d/%02d/%02d/%v",
		url.PathEscape(accountID), now.Year(), now.Month(), now.Day(), uuid.New())
}
