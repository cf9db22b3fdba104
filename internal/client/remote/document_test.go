package remote

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocument(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	d := Document{
		"$id":        "f1",
		"name":       "Trip.MOV",
		"size":       float64(2048),
		"type":       "video/quicktime",
		"url":        "https://cdn.example.com/f1",
		"accountId":  "acc-1",
		"$createdAt": created.Format(time.RFC3339),
		"category":   "document",
		"owner":      map[string]any{"$id": "u1", "fullName": "Jane Doe"},
	}

	got, err := DecodeDocument(d)
	require.NoError(t, err)

	want := models.FileRecord{
		ID:        "f1",
		Name:      "Trip.MOV",
		Category:  models.CategoryVideo,
		Extension: "mov",
		SizeBytes: 2048,
		OwnerID:   "u1",
		OwnerName: "Jane Doe",
		AccountID: "acc-1",
		CreatedAt: created,
		URL:       "https://cdn.example.com/f1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeDocument mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument_MIMEFallbackAndJSONNumber(t *testing.T) {
	got, err := DecodeDocument(Document{
		"id":        "f2",
		"name":      "scan",
		"size":      json.Number("10"),
		"mimeType":  "image/heif-sequence",
		"createdAt": time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, models.CategoryImage, got.Category)
	require.Equal(t, "", got.Extension)
	require.Equal(t, int64(10), got.SizeBytes)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	now := time.Now().Format(time.RFC3339)
	tests := []struct {
		name string
		doc  Document
	}{
		{"missing id", Document{"name": "a.txt", "size": 1, "$createdAt": now}},
		{"missing name", Document{"$id": "x", "size": 1, "$createdAt": now}},
		{"negative size", Document{"$id": "x", "name": "a.txt", "size": -1, "$createdAt": now}},
		{"fractional size", Document{"$id": "x", "name": "a.txt", "size": 1.5, "$createdAt": now}},
		{"bad size type", Document{"$id": "x", "name": "a.txt", "size": true, "$createdAt": now}},
		{"missing createdAt", Document{"$id": "x", "name": "a.txt", "size": 1}},
		{"bad createdAt", Document{"$id": "x", "name": "a.txt", "size": 1, "$createdAt": "yesterday"}},
		{"bad url", Document{"$id": "x", "name": "a.txt", "size": 1, "$createdAt": now, "url": "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument(tt.doc)
			require.Error(t, err)
			require.True(t, errors.Is(err, common.ErrInvalidRecord), err)
		})
	}
}

func TestEncodeRecord_RoundTrip(t *testing.T) {
	rec := models.FileRecord{
		ID:        "f3",
		Name:      "notes.md",
		Category:  models.CategoryDocument,
		Extension: "md",
		SizeBytes: 99,
		OwnerID:   "u",
		OwnerName: "User",
		AccountID: "a",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 123, time.UTC),
		URL:       "http://localhost/v1/blobs/f3",
	}
	got, err := DecodeDocument(EncodeRecord(rec, "text/markdown"))
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")

	ue := AsUploadError("a.txt", cause)
	require.True(t, errors.Is(ue, common.ErrUpload))
	require.True(t, errors.Is(ue, cause))
	require.Same(t, ue, AsUploadError("other", ue))
	require.Nil(t, AsUploadError("a.txt", nil))

	var qe error = &QueryError{Query: "abc", Err: common.ErrUnavailable}
	require.True(t, errors.Is(qe, common.ErrQuery))
	require.True(t, errors.Is(qe, common.ErrUnavailable))
	require.False(t, errors.Is(qe, common.ErrUpload))
	require.Contains(t, qe.Error(), `"abc"`)
}
