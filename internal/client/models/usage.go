package models

import "time"

// UsageSummary is the storage accounting of one category.
type UsageSummary struct {
	Category        Category
	TotalBytes      int64
	LatestCreatedAt time.Time
}

// UsageReport is the output of the usage aggregator.
type UsageReport struct {
	// Summaries has exactly one entry per category, in Categories order.
	Summaries []UsageSummary

	TotalBytes int64
	LimitBytes int64

	// UsedRatio is TotalBytes/LimitBytes, unclamped so over-quota accounts
	// are detectable. It is 0 when LimitBytes is not positive.
	UsedRatio float64

	// Fallback is set when the source reported a negative total that was
	// replaced with zero.
	Fallback bool
}

// Summary returns the entry for c. The zero summary is returned for
// categories outside the taxonomy.
func (r UsageReport) Summary(c Category) UsageSummary {
	for _, s := range r.Summaries {
		if s.Category == c {
			return s
		}
	}
	return UsageSummary{Category: c}
}

// ClampedRatio is UsedRatio limited to [0, 1] for percentage bars.
func (r UsageReport) ClampedRatio() float64 {
	switch {
	case r.UsedRatio < 0:
		return 0
	case r.UsedRatio > 1:
		return 1
	default:
		return r.UsedRatio
	}
}

// Percent is the clamped ratio expressed in percent.
func (r UsageReport) Percent() float64 {
	return r.ClampedRatio() * 100
}

// OverQuota reports whether usage exceeds the account limit.
func (r UsageReport) OverQuota() bool {
	return r.UsedRatio > 1
}
