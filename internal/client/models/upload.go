package models

import "time"

// TaskState is the lifecycle state of an upload task.
type TaskState string

const (
	TaskQueued    TaskState = "queued"
	TaskUploading TaskState = "uploading"
	TaskCompleted TaskState = "completed"
	TaskRejected  TaskState = "rejected"
	TaskFailed    TaskState = "failed"
	TaskRemoved   TaskState = "removed"
)

// Terminal reports whether no further transition other than removal can
// happen from s.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskCompleted, TaskRejected, TaskFailed, TaskRemoved:
		return true
	}
	return false
}

// UploadTask is the ephemeral view of one file being uploaded. Values handed
// out by the orchestrator are copies; mutating them has no effect.
type UploadTask struct {
	ID string

	Name        string
	SizeBytes   int64
	ContentType string

	// Preview metadata from the classifier.
	Category  Category
	Extension string

	State           TaskState
	ProgressPercent int

	// Err is set for rejected and failed tasks.
	Err error

	// Record is the stored file once the task completed.
	Record *FileRecord

	EnqueuedAt time.Time
}
