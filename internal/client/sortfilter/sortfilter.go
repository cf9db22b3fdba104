// Package sortfilter orders and filters file lists for browsing.
package sortfilter

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/samber/lo"
)

type Field string

const (
	FieldCreatedAt Field = "createdAt"
	FieldName      Field = "name"
	FieldSize      Field = "size"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec is a parsed "<field>-<direction>" value.
type SortSpec struct {
	Field     Field
	Direction Direction
}

// DefaultSpec is used for unrecognised or absent input.
var DefaultSpec = SortSpec{Field: FieldCreatedAt, Direction: Desc}

func (s SortSpec) String() string {
	return string(s.Field) + "-" + string(s.Direction)
}

// ParseSortSpec parses s, tolerating a leading '$' on the field name.
func ParseSortSpec(s string) SortSpec {
	field, dir, ok := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "$"), "-")
	if !ok {
		return DefaultSpec
	}

	spec := SortSpec{Field: Field(field), Direction: Direction(dir)}
	switch spec.Field {
	case FieldCreatedAt, FieldName, FieldSize:
	default:
		return DefaultSpec
	}
	switch spec.Direction {
	case Asc, Desc:
	default:
		return DefaultSpec
	}
	return spec
}

// Apply filters files by category membership (empty means all) and then
// stable-sorts them by spec. files is not modified.
func Apply(files []models.FileRecord, spec SortSpec, categories []models.Category) []models.FileRecord {
	out := slices.Clone(files)
	if len(categories) > 0 {
		out = lo.Filter(out, func(f models.FileRecord, _ int) bool {
			return lo.Contains(categories, f.Category)
		})
	}

	cmp := compareBy(spec.Field)
	if spec.Direction == Desc {
		asc := cmp
		cmp = func(a, b models.FileRecord) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func compareBy(f Field) func(a, b models.FileRecord) int {
	switch f {
	case FieldName:
		return func(a, b models.FileRecord) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case FieldSize:
		return func(a, b models.FileRecord) int {
			switch {
			case a.SizeBytes < b.SizeBytes:
				return -1
			case a.SizeBytes > b.SizeBytes:
				return 1
			}
			return 0
		}
	default:
		return func(a, b models.FileRecord) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// Recent returns at most n records, newest first.
func Recent(files []models.FileRecord, n int) []models.FileRecord {
	if n <= 0 {
		return nil
	}
	out := Apply(files, DefaultSpec, nil)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
