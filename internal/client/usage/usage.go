// Package usage aggregates per-category and overall storage usage.
package usage

import (
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

// FallbackDisplay is rendered in place of an invalid (negative) size.
const FallbackDisplay = "0 MB"

// Totals is the pre-aggregated accounting reported by the remote store.
type Totals struct {
	ByCategory       map[models.Category]int64
	LatestByCategory map[models.Category]time.Time
	TotalBytes       int64
	LimitBytes       int64
}

// Aggregate groups files by category. Every category appears exactly once in
// the result, zero-filled when no file matches it.
func Aggregate(files []models.FileRecord, limitBytes int64) models.UsageReport {
	groups := lo.GroupBy(files, func(f models.FileRecord) models.Category {
		if !f.Category.Valid() {
			return models.CategoryOther
		}
		return f.Category
	})

	summaries := lo.Map(models.Categories, func(c models.Category, _ int) models.UsageSummary {
		g := groups[c]
		s := models.UsageSummary{
			Category:   c,
			TotalBytes: lo.SumBy(g, func(f models.FileRecord) int64 { return f.SizeBytes }),
		}
		for _, f := range g {
			if f.CreatedAt.After(s.LatestCreatedAt) {
				s.LatestCreatedAt = f.CreatedAt
			}
		}
		return s
	})

	total := lo.SumBy(summaries, func(s models.UsageSummary) int64 { return s.TotalBytes })

	return models.UsageReport{
		Summaries:  summaries,
		TotalBytes: total,
		LimitBytes: limitBytes,
		UsedRatio:  ratio(total, limitBytes),
	}
}

// FromTotals builds a report from remote totals. Negative values are
// replaced with zero and flagged through Fallback rather than rejected.
// TotalBytes is recomputed from the category totals; a negative remote
// total only sets Fallback.
func FromTotals(t Totals) models.UsageReport {
	var fallback bool

	summaries := lo.Map(models.Categories, func(c models.Category, _ int) models.UsageSummary {
		b := t.ByCategory[c]
		if b < 0 {
			b = 0
			fallback = true
		}
		return models.UsageSummary{Category: c, TotalBytes: b, LatestCreatedAt: t.LatestByCategory[c]}
	})

	// The report total is always the sum of its summaries, so clamped or
	// dropped categories never leave a stale remote total behind.
	total := lo.SumBy(summaries, func(s models.UsageSummary) int64 { return s.TotalBytes })
	if t.TotalBytes < 0 {
		fallback = true
	}

	limit := t.LimitBytes
	if limit < 0 {
		limit = 0
		fallback = true
	}

	return models.UsageReport{
		Summaries:  summaries,
		TotalBytes: total,
		LimitBytes: limit,
		UsedRatio:  ratio(total, limit),
		Fallback:   fallback,
	}
}

func ratio(total, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(total) / float64(limit)
}

// FormatBytes renders n with IEC units. Negative input renders as
// FallbackDisplay.
func FormatBytes(n int64) string {
	if n < 0 {
		return FallbackDisplay
	}
	return humanize.IBytes(uint64(n))
}

// ParseBytes accepts human sizes such as "50MB" or "2 GiB".
func ParseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
