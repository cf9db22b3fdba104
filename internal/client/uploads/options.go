package uploads

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
)

const (
	DefaultMaxFileSize      int64 = 50 << 20
	DefaultGracePeriod            = time.Second
	DefaultProgressInterval       = 200 * time.Millisecond
	DefaultProgressStep           = 10
	DefaultProgressCap            = 90
)

// Options tune an Orchestrator. Zero values select the defaults.
type Options struct {
	MaxFileSize int64

	// GracePeriod is how long a completed task stays visible.
	GracePeriod time.Duration

	// The simulated progress advances by ProgressStep every
	// ProgressInterval until ProgressCap, which is kept below 100.
	ProgressInterval time.Duration
	ProgressStep     int
	ProgressCap      int

	// Workers bounds concurrent transfers; 0 means unbounded.
	Workers int

	OwnerID   string
	AccountID string
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = DefaultGracePeriod
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	if o.ProgressStep <= 0 {
		o.ProgressStep = DefaultProgressStep
	}
	if o.ProgressCap <= 0 {
		o.ProgressCap = DefaultProgressCap
	}
	o.ProgressCap = min(o.ProgressCap, 99)
	if o.Workers < 0 {
		o.Workers = 0
	}
	return o
}

// OversizeError rejects a file larger than the configured limit.
type OversizeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("%s is too large: %d bytes exceeds the %d byte limit", e.Name, e.Size, e.Limit)
}

func (e *OversizeError) Is(target error) bool { return target == common.ErrOversize }

// Notifier receives user-visible upload outcomes. Calls are made outside the
// orchestrator lock.
type Notifier interface {
	UploadCompleted(task models.UploadTask)
	UploadRejected(task models.UploadTask, limit int64)
	UploadFailed(task models.UploadTask, err error)
}

type nopNotifier struct{}

func (nopNotifier) UploadCompleted(models.UploadTask)       {}
func (nopNotifier) UploadRejected(models.UploadTask, int64) {}
func (nopNotifier) UploadFailed(models.UploadTask, error)   {}

// Event is published on every change to a task. Evicted marks the task's
// removal from the active set, either after the grace period or on user
// cancellation.
type Event struct {
	Task    models.UploadTask
	Evicted bool
}
