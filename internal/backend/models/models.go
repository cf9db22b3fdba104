// Package models defines the records persisted by the embedded backend.
package models

import (
	"time"

	cm "github.com/dmitrijs2005/cloudkeeper/internal/client/models"
)

// Account owns a storage quota shared by all of its owners.
type Account struct {
	ID   string
	Name string
	// LimitBytes is the storage quota; 0 means unlimited.
	LimitBytes int64
	CreatedAt  time.Time
}

// File is the stored metadata of one uploaded payload. The bytes
// themselves live in the blob store under StorageKey.
type File struct {
	ID        string
	AccountID string
	OwnerID   string
	OwnerName string

	Name      string
	MIMEType  string
	Category  cm.Category
	Extension string
	SizeBytes int64

	// Digest is the hex BLAKE2b-256 of the content.
	Digest     string
	StorageKey string
	CreatedAt  time.Time
}

// Record converts f into the client-side view. url is the download link
// resolved by the blob store.
func (f *File) Record(url string) cm.FileRecord {
	return cm.FileRecord{
		ID:        f.ID,
		Name:      f.Name,
		Category:  f.Category,
		Extension: f.Extension,
		SizeBytes: f.SizeBytes,
		OwnerID:   f.OwnerID,
		OwnerName: f.OwnerName,
		AccountID: f.AccountID,
		CreatedAt: f.CreatedAt,
		URL:       url,
	}
}

// CategoryTotal is one row of the per-category usage aggregate.
type CategoryTotal struct {
	Category cm.Category
	Bytes    int64
	Latest   time.Time
}
