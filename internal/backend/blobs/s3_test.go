package blobs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a path-style S3 endpoint holding one bucket in memory.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	created bool
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3(bucket string, created bool) *fakeS3 {
	return &fakeS3{bucket: bucket, created: created, objects: map[string][]byte{}, types: map[string]string{}}
}

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodHead:
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodPut:
		f.created = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, noSuchKey)
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		_, _ = w.Write(b)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newS3(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Store(context.Background(), S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    fake.bucket,
		AccessKey: "admin",
		SecretKey: "secretpassword",
	})
	require.NoError(t, err)
	return s
}

func TestS3_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3("vault", true)
	s := newS3(t, fake)

	require.NoError(t, s.Put(ctx, "accounts/a/k1", io.NopCloser(strings.NewReader("hello")), 5, "text/plain"))

	o, err := s.Get(ctx, "accounts/a/k1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(readAll(t, o)))
	assert.Equal(t, int64(5), o.Size)
	assert.Equal(t, "text/plain", o.ContentType)

	require.NoError(t, s.Delete(ctx, "accounts/a/k1"))
	_, err = s.Get(ctx, "accounts/a/k1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3_EnsureBucket(t *testing.T) {
	fake := newFakeS3("vault", false)
	s := newS3(t, fake)

	require.NoError(t, s.EnsureBucket(context.Background()))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.created)
}

func TestS3_URLIsPresigned(t *testing.T) {
	s := newS3(t, newFakeS3("vault", true))

	u, err := s.URL(context.Background(), "accounts/a/k1")
	require.NoError(t, err)
	assert.Contains(t, u, "/vault/accounts/a/k1")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=900")
}

func TestS3_PresignError(t *testing.T) {
	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	boom := errors.New("boom")
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, boom
	}

	s := newS3(t, newFakeS3("vault", true))
	_, err := s.URL(context.Background(), "k")
	require.ErrorIs(t, err, boom)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	boom := errors.New("no config")
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}

	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	require.ErrorIs(t, err, boom)
}
