// Package services contains the application services behind the CloudKeeper
// shell: browsing sections, the dashboard and usage report, single-file
// actions, and the session the shell runs under.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/dashboard"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/sortfilter"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/filex"
	"github.com/samber/lo"
)

// Listing is one browsed section.
type Listing struct {
	Section classify.Section
	Query   string
	Sort    sortfilter.SortSpec
	Files   []models.FileRecord
	// Total is the number of matches reported by the store, which may exceed
	// len(Files) when a limit applies.
	Total int
	// SizeBytes is the summed size of the listed files.
	SizeBytes int64
	LatestAt  time.Time
}

// FileService defines what the shell does with stored files.
//
// Contract:
//   - Browse: list one section, optionally filtered by name, in a stable order.
//   - Dashboard: usage cards plus the most recent files.
//   - Usage: the account's usage report.
//   - Rename / Delete: act on one file by id.
//   - Download: save a file's content into a local directory, never
//     overwriting an existing file; returns the written path.
type FileService interface {
	Browse(ctx context.Context, section classify.Section, search string, sort string) (Listing, error)
	Dashboard(ctx context.Context) (dashboard.ViewModel, error)
	Usage(ctx context.Context) (models.UsageReport, error)
	Rename(ctx context.Context, id, name string) (models.FileRecord, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, f models.FileRecord, dir string) (string, error)
}

type fileService struct {
	store remote.RemoteStore
	limit int
}

// NewFileService returns a FileService over store. limit caps the number of
// files fetched per section; 0 fetches everything.
func NewFileService(store remote.RemoteStore, limit int) FileService {
	return &fileService{store: store, limit: limit}
}

func (s *fileService) Browse(ctx context.Context, section classify.Section, search string, sort string) (Listing, error) {
	spec := sortfilter.ParseSortSpec(sort)
	categories := section.Categories()
	if len(categories) == 0 {
		return Listing{}, fmt.Errorf("unknown section %q", section)
	}

	list, err := s.store.ListFiles(ctx, remote.ListQuery{
		Categories: categories,
		SearchText: search,
		Sort:       spec.String(),
		Limit:      s.limit,
	})
	if err != nil {
		return Listing{}, &remote.QueryError{Query: search, Err: err}
	}

	files := sortfilter.Apply(list.Files, spec, categories)

	l := Listing{
		Section:   section,
		Query:     search,
		Sort:      spec,
		Files:     files,
		Total:     max(list.Total, len(files)),
		SizeBytes: lo.SumBy(files, func(f models.FileRecord) int64 { return f.SizeBytes }),
	}
	if recent := sortfilter.Recent(files, 1); len(recent) > 0 {
		l.LatestAt = recent[0].CreatedAt
	}
	return l, nil
}

func (s *fileService) Dashboard(ctx context.Context) (dashboard.ViewModel, error) {
	report, err := s.Usage(ctx)
	if err != nil {
		return dashboard.ViewModel{}, err
	}

	list, err := s.store.ListFiles(ctx, remote.ListQuery{
		Sort:  sortfilter.DefaultSpec.String(),
		Limit: dashboard.RecentLimit,
	})
	if err != nil {
		return dashboard.ViewModel{}, fmt.Errorf("list recent files: %w", err)
	}

	vm := dashboard.ComposeReport(report, list.Files)
	vm.TotalFiles = max(list.Total, len(list.Files))
	return vm, nil
}

func (s *fileService) Usage(ctx context.Context) (models.UsageReport, error) {
	totals, err := s.store.UsageTotals(ctx)
	if err != nil {
		return models.UsageReport{}, fmt.Errorf("usage totals: %w", err)
	}
	return usage.FromTotals(totals.Totals()), nil
}

func (s *fileService) Rename(ctx context.Context, id, name string) (models.FileRecord, error) {
	if strings.TrimSpace(name) == "" {
		return models.FileRecord{}, fmt.Errorf("%w: empty name", common.ErrInvalidRecord)
	}
	rec, err := s.store.RenameFile(ctx, id, name)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("rename %s: %w", id, err)
	}
	return rec, nil
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (s *fileService) Download(ctx context.Context, f models.FileRecord, dir string) (string, error) {
	c, err := s.store.OpenFile(ctx, f.ID)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", f.Name, err)
	}
	defer c.Body.Close()

	return filex.WriteNew(dir, f.Name, c.Body)
}
