//go:generate go run go.uber.org/mock/mockgen -destination=../../mocks/mock_remote.go -package=mocks github.com/dmitrijs2005/cloudkeeper/internal/client/remote RemoteStore,LocalFile

// Package remote defines the capability the runtime consumes from the
// backend-as-a-service: listing files, reading usage totals, uploading and managing single files.
package remote

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
)

// LocalFile is a payload that has not been persisted yet.
type LocalFile interface {
	Name() string
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
}

type ListQuery struct {
	// Categories restricts the result; empty means all.
	Categories []models.Category
	SearchText string
	// Sort is a "<field>-<direction>" spec.
	Sort  string
	Limit int
}

type FileList struct {
	Total int
	Files []models.FileRecord
}

type UsageTotals struct {
	ByCategory        map[models.Category]int64
	LatestByCategory  map[models.Category]time.Time
	TotalBytes        int64
	AccountLimitBytes int64
}

// Totals converts u into the aggregator's input.
func (u UsageTotals) Totals() usage.Totals {
	return usage.Totals{
		ByCategory:       u.ByCategory,
		LatestByCategory: u.LatestByCategory,
		TotalBytes:       u.TotalBytes,
		LimitBytes:       u.AccountLimitBytes,
	}
}

type UploadRequest struct {
	File      LocalFile
	OwnerID   string
	AccountID string

	// Progress, when set, receives the cumulative number of bytes sent.
	Progress func(sent int64)
}

type Lister interface {
	ListFiles(ctx context.Context, q ListQuery) (FileList, error)
}

type UsageReader interface {
	UsageTotals(ctx context.Context) (UsageTotals, error)
}

type Uploader interface {
	UploadFile(ctx context.Context, req UploadRequest) (models.FileRecord, error)
}

// Content is the opened body of a stored file. Callers close Body.
type Content struct {
	Name        string
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// FileManager covers the actions on a single stored file.
type FileManager interface {
	// RenameFile renames file id and returns the updated record.
	RenameFile(ctx context.Context, id, name string) (models.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error
	OpenFile(ctx context.Context, id string) (Content, error)
}

type RemoteStore interface {
	Lister
	UsageReader
	Uploader
	FileManager
}
