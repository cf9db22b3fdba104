package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ProgressFunc receives the cumulative number of bytes sent.
type ProgressFunc func(sent int64)

// NewProgressReader wraps r so that progress observes every read.
func NewProgressReader(r io.Reader, progress ProgressFunc) io.Reader {
	return &countingReader{r: r, progress: progress}
}

type countingReader struct {
	r        io.Reader
	sent     int64
	progress ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.progress != nil {
			c.progress(c.sent)
		}
	}
	return n, err
}

// UploadToPresignedURL streams size bytes from body to a presigned PUT URL.
// A nil hc uses http.DefaultClient.
func UploadToPresignedURL(ctx context.Context, hc *http.Client, url string, body io.Reader, size int64, contentType string, progress ProgressFunc) error {
	if hc == nil {
		hc = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, NewProgressReader(body, progress))
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
