// Package dashboard combines usage aggregation with the most recent files
// into the summary view model rendered on the home screen.
package dashboard

import (
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/sortfilter"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/samber/lo"
)

// RecentLimit is the number of recent files shown.
const RecentLimit = 5

// Card is the display of one category's usage.
type Card struct {
	Category    models.Category
	Label       string
	Icon        string
	Section     classify.Section
	SizeDisplay string
	LatestAt    time.Time
	// SharePercent is this category's share of the account limit, clamped to
	// [0, 100].
	SharePercent float64
}

type ViewModel struct {
	Usage        models.UsageReport
	Cards        []Card
	Recent       []models.FileRecord
	TotalFiles   int
	UsedDisplay  string
	LimitDisplay string
	Percent      float64
}

// Compose aggregates files against limitBytes.
func Compose(files []models.FileRecord, limitBytes int64) ViewModel {
	return ComposeReport(usage.Aggregate(files, limitBytes), files)
}

// ComposeReport builds the view model from an existing report. files only
// feed the recent list and file count.
func ComposeReport(report models.UsageReport, files []models.FileRecord) ViewModel {
	cards := lo.Map(report.Summaries, func(s models.UsageSummary, _ int) Card {
		return Card{
			Category:     s.Category,
			Label:        classify.Label(s.Category),
			Icon:         classify.Icon(s.Category),
			Section:      classify.RouteFor(s.Category),
			SizeDisplay:  usage.FormatBytes(s.TotalBytes),
			LatestAt:     s.LatestCreatedAt,
			SharePercent: share(s.TotalBytes, report.LimitBytes),
		}
	})

	used := usage.FormatBytes(report.TotalBytes)
	if report.Fallback && report.TotalBytes == 0 {
		used = usage.FallbackDisplay
	}

	return ViewModel{
		Usage:        report,
		Cards:        cards,
		Recent:       sortfilter.Recent(files, RecentLimit),
		TotalFiles:   len(files),
		UsedDisplay:  used,
		LimitDisplay: usage.FormatBytes(report.LimitBytes),
		Percent:      report.Percent(),
	}
}

func share(n, limit int64) float64 {
	if limit <= 0 || n <= 0 {
		return 0
	}
	return min(float64(n)/float64(limit)*100, 100)
}
