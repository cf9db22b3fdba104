// Package models defines the client-side data model of the CloudKeeper
// file-management runtime: file records owned by the remote store, usage
// summaries, and the ephemeral upload and search state.
package models

import "time"

// Category is one of the five fixed file groupings used for both storage
// accounting and browsing.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryOther    Category = "other"
)

// Categories lists the taxonomy in its fixed display order.
var Categories = []Category{
	CategoryDocument,
	CategoryImage,
	CategoryVideo,
	CategoryAudio,
	CategoryOther,
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryImage, CategoryVideo, CategoryAudio, CategoryOther:
		return true
	}
	return false
}

// FileRecord is a file as known to the remote store. The core only holds
// read-only or freshly created copies.
type FileRecord struct {
	// ID is the opaque identifier assigned by the remote store.
	ID string

	// Name is the display name, usually ending in ".<extension>".
	Name string

	// Category is derived from Extension (or the MIME family as fallback);
	// it is never taken from the store independently.
	Category Category

	// Extension is the lowercase suffix after the last '.', or empty.
	Extension string

	SizeBytes int64

	OwnerID   string
	OwnerName string
	AccountID string

	CreatedAt time.Time

	// URL locates the blob for retrieval or preview.
	URL string
}
