package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

// Document is the loosely typed record shape returned by the backend.
type Document map[string]any

var validate = validator.New(validator.WithRequiredStructEnabled())

type documentFields struct {
	ID        string    `validate:"required"`
	Name      string    `validate:"required,max=1024"`
	SizeBytes int64     `validate:"gte=0"`
	MIMEType  string    `validate:"omitempty,max=255"`
	OwnerID   string    `validate:"omitempty"`
	OwnerName string    `validate:"omitempty"`
	AccountID string    `validate:"omitempty"`
	CreatedAt time.Time `validate:"required"`
	URL       string    `validate:"omitempty,url"`
}

// DecodeDocument validates d and maps it into a FileRecord. The category is
// always derived from the name and MIME type, never read from d.
func DecodeDocument(d Document) (models.FileRecord, error) {
	var f documentFields
	var err error

	f.ID = d.str("$id", "id")
	f.Name = d.str("name")
	f.MIMEType = d.str("type", "mimeType", "contentType")
	f.OwnerID = d.str("ownerId")
	f.OwnerName = d.str("ownerName")
	f.AccountID = d.str("accountId")
	f.URL = d.str("url")

	if owner, ok := d["owner"].(map[string]any); ok {
		o := Document(owner)
		if f.OwnerName == "" {
			f.OwnerName = o.str("fullName", "name")
		}
		if f.OwnerID == "" {
			f.OwnerID = o.str("$id", "id")
		}
	}

	if f.SizeBytes, err = d.integer("size", "sizeBytes"); err != nil {
		return models.FileRecord{}, fmt.Errorf("%w: size: %v", common.ErrInvalidRecord, err)
	}
	if f.CreatedAt, err = d.timestamp("$createdAt", "createdAt"); err != nil {
		return models.FileRecord{}, fmt.Errorf("%w: createdAt: %v", common.ErrInvalidRecord, err)
	}

	if err := validate.Struct(f); err != nil {
		return models.FileRecord{}, fmt.Errorf("%w: %v", common.ErrInvalidRecord, err)
	}

	cls := classify.ClassifyWithMIME(f.Name, f.MIMEType)

	return models.FileRecord{
		ID:        f.ID,
		Name:      f.Name,
		Category:  cls.Category,
		Extension: cls.Extension,
		SizeBytes: f.SizeBytes,
		OwnerID:   f.OwnerID,
		OwnerName: f.OwnerName,
		AccountID: f.AccountID,
		CreatedAt: f.CreatedAt,
		URL:       f.URL,
	}, nil
}

// EncodeRecord renders r in the document shape accepted by DecodeDocument.
func EncodeRecord(r models.FileRecord, mimeType string) Document {
	d := Document{
		"$id":        r.ID,
		"name":       r.Name,
		"size":       r.SizeBytes,
		"$createdAt": r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"ownerId":    r.OwnerID,
		"ownerName":  r.OwnerName,
		"accountId":  r.AccountID,
		"extension":  r.Extension,
	}
	if r.URL != "" {
		d["url"] = r.URL
	}
	if mimeType != "" {
		d["type"] = mimeType
	}
	return d
}

func (d Document) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (d Document) str(keys ...string) string {
	v, ok := d.lookup(keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (d Document) integer(keys ...string) (int64, error) {
	v, ok := d.lookup(keys...)
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

func (d Document) timestamp(keys ...string) (time.Time, error) {
	v, ok := d.lookup(keys...)
	if !ok {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	}
	return time.Time{}, fmt.Errorf("unexpected type %T", v)
}
