// Package index keeps a bluge full-text index of file names, scoped per
// account, for case-insensitive substring search.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldID      = "_id"
	fieldAccount = "account"
	fieldName    = "name"

	// MaxHits bounds a single search.
	MaxHits = 10000
)

type NameIndex struct {
	w *bluge.Writer
}

// Open opens an on-disk index under path, or an in-memory one when path is
// empty.
func Open(path string) (*NameIndex, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}

	w, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &NameIndex{w: w}, nil
}

// Put indexes or re-indexes the name of file id.
func (x *NameIndex) Put(accountID, id, name string) error {
	doc := bluge.NewDocument(id).
		AddField(bluge.NewKeywordField(fieldAccount, accountID)).
		AddField(bluge.NewKeywordField(fieldName, strings.ToLower(name)))

	if err := x.w.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	return nil
}

func (x *NameIndex) Delete(id string) error {
	return x.w.Delete(bluge.Identifier(id))
}

// Search returns the ids of the account's files whose name contains text,
// ignoring case. Wildcard characters in text are matched literally by
// dropping them.
func (x *NameIndex) Search(ctx context.Context, accountID, text string) ([]string, error) {
	pattern := sanitize(text)
	if pattern == "" {
		return nil, nil
	}

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(accountID).SetField(fieldAccount)).
		AddMust(bluge.NewWildcardQuery("*" + pattern + "*").SetField(fieldName))

	r, err := x.w.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer r.Close()

	dmi, err := r.Search(ctx, bluge.NewTopNSearch(MaxHits, query))
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	var ids []string
	match, err := dmi.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("index iterate: %w", err)
	}

	return ids, nil
}

func (x *NameIndex) Close() error {
	return x.w.Close()
}

func sanitize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.NewReplacer("*", "", "?", "").Replace(text)
}
