package remote

import (
	"bytes"
	"io"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
)

// MemoryFile is a LocalFile held in memory.
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
	size        int64
}

// NewMemoryFile sniffs the content type when contentType is empty.
func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	if contentType == "" {
		contentType = classify.Sniff(data)
	}
	return &MemoryFile{name: name, contentType: contentType, data: data, size: int64(len(data))}
}

// NewSizedFile reports size without holding the payload. Open returns an
// empty reader; it is meant for size-limit checks.
func NewSizedFile(name string, size int64) *MemoryFile {
	return &MemoryFile{name: name, contentType: "application/octet-stream", size: size}
}

func (f *MemoryFile) Name() string        { return f.name }
func (f *MemoryFile) Size() int64         { return f.size }
func (f *MemoryFile) ContentType() string { return f.contentType }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
