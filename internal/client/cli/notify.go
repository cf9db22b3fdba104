package cli

import (
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
)

// UploadCompleted implements uploads.Notifier.
func (a *App) UploadCompleted(t models.UploadTask) {
	a.out.Successf("\nUploaded %s (%s)\n", t.Name, usage.FormatBytes(t.SizeBytes))
}

// UploadRejected implements uploads.Notifier.
func (a *App) UploadRejected(t models.UploadTask, limit int64) {
	a.out.Warnf("\n%s is larger than the %s limit and was not uploaded\n", t.Name, usage.FormatBytes(limit))
}

// UploadFailed implements uploads.Notifier.
func (a *App) UploadFailed(t models.UploadTask, err error) {
	a.out.Failf("\nUpload of %s failed: %v\n", t.Name, err)
}
