package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/dashboard"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/dmitrijs2005/cloudkeeper/internal/filex"
	"github.com/samber/lo"
)

// searchTimeout bounds how long the shell waits for a search to settle
// after the debounce delay.
const searchTimeout = 10 * time.Second

const dateLayout = "2006-01-02 15:04"

func (a *App) Dashboard(ctx context.Context) error {
	vm, err := a.files.Dashboard(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.usage = &vm.Usage
	a.mu.Unlock()

	a.renderDashboard(vm)
	a.setResults(vm.Recent, false)
	return nil
}

func (a *App) renderDashboard(vm dashboard.ViewModel) {
	a.out.Printf("Storage: %s of %s used (%.1f%%), %d files\n", vm.UsedDisplay, vm.LimitDisplay, vm.Percent, vm.TotalFiles)
	if vm.Usage.OverQuota() {
		a.out.Warnf("Storage limit exceeded\n")
	}

	rows := lo.Map(vm.Cards, func(c dashboard.Card, _ int) []string {
		latest := "-"
		if !c.LatestAt.IsZero() {
			latest = c.LatestAt.Local().Format(dateLayout)
		}
		return []string{c.Label, string(c.Section), c.SizeDisplay, fmt.Sprintf("%.1f%%", c.SharePercent), latest}
	})
	a.out.Table([]string{"Category", "Section", "Size", "Share", "Latest"}, rows)

	if len(vm.Recent) > 0 {
		a.out.Println("Recent files:")
		a.renderFiles(vm.Recent)
	}
}

// List browses a section; with no arguments it lists the sections.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.out.Println("Sections:", strings.Join(lo.Map(classify.Sections, func(s classify.Section, _ int) string { return string(s) }), ", "))
		return nil
	}

	section, err := classify.ParseSection(args[0])
	if err != nil {
		return err
	}
	sort := ""
	if len(args) > 1 {
		sort = args[1]
	}

	a.mu.Lock()
	query := a.query
	if a.location != section.Path(query) {
		query = ""
	}
	a.mu.Unlock()

	return a.browse(ctx, section, query, sort)
}

func (a *App) browse(ctx context.Context, section classify.Section, query, sort string) error {
	l, err := a.files.Browse(ctx, section, query, sort)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.location = section.Path(query)
	a.query = query
	a.mu.Unlock()

	a.out.Printf("%s: %d files, %s (sorted by %s)\n", section.Path(query), l.Total, usage.FormatBytes(l.SizeBytes), l.Sort)
	a.renderFiles(l.Files)
	a.setResults(l.Files, false)
	return nil
}

func (a *App) renderFiles(files []models.FileRecord) {
	if len(files) == 0 {
		a.out.Println("No files.")
		return
	}
	rows := lo.Map(files, func(f models.FileRecord, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			a.out.truncate(f.Name),
			string(f.Category),
			usage.FormatBytes(f.SizeBytes),
			f.CreatedAt.Local().Format(dateLayout),
			f.OwnerName,
		}
	})
	a.out.Table([]string{"#", "Name", "Category", "Size", "Created", "Owner"}, rows)
}

func (a *App) setResults(files []models.FileRecord, fromSearch bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = files
	a.searchHit = fromSearch
}

// Search feeds text to the search controller and waits for the dispatched
// request to settle. An empty text clears the search.
func (a *App) Search(ctx context.Context, text string) error {
	ch, unsubscribe := a.search.Subscribe()
	defer unsubscribe()

	a.search.OnQueryChange(text)

	q := strings.TrimSpace(text)
	if q == "" {
		a.setResults(nil, false)
		a.out.Println("Search cleared.")
		return nil
	}

	timeout := time.NewTimer(a.config.SearchDelay + searchTimeout)
	defer timeout.Stop()

	dispatched := false
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return errors.New("search closed")
			}
			if s.EffectiveQuery != q {
				continue
			}
			if s.IsLoading {
				dispatched = true
				continue
			}
			if !dispatched {
				continue
			}
			if s.Err != nil {
				return s.Err
			}
			a.out.Printf("Search %q: %d results\n", q, len(s.Results))
			a.renderFiles(s.Results)
			a.setResults(s.Results, true)
			return nil
		case <-timeout.C:
			return fmt.Errorf("search %q: %w", q, context.DeadlineExceeded)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Open shows the n-th file of the last listing. A search hit navigates to
// the file's section with the search query instead.
func (a *App) Open(ctx context.Context, arg string) error {
	f, hit, err := a.pick(arg)
	if err != nil {
		return err
	}

	if hit {
		a.search.Select(f)

		a.mu.Lock()
		query := a.query
		a.mu.Unlock()

		return a.browse(ctx, classify.RouteFor(f.Category), query, "")
	}

	a.out.Println(f.Name)
	a.out.Table([]string{"Field", "Value"}, [][]string{
		{"ID", f.ID},
		{"Category", classify.Label(f.Category)},
		{"Extension", f.Extension},
		{"Size", usage.FormatBytes(f.SizeBytes)},
		{"Created", f.CreatedAt.Local().Format(dateLayout)},
		{"Owner", f.OwnerName},
		{"URL", f.URL},
	})
	return nil
}

// pick returns the file numbered arg in the last listing and whether that
// listing came from a search.
func (a *App) pick(arg string) (models.FileRecord, bool, error) {
	n, err := strconv.Atoi(arg)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil || n < 1 || n > len(a.results) {
		return models.FileRecord{}, false, fmt.Errorf("no file #%s in the last listing", arg)
	}
	return a.results[n-1], a.searchHit, nil
}

// replaceResult swaps the listed copy of file id; a nil rec drops it.
func (a *App) replaceResult(id string, rec *models.FileRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := make([]models.FileRecord, 0, len(a.results))
	for _, f := range a.results {
		switch {
		case f.ID != id:
			results = append(results, f)
		case rec != nil:
			results = append(results, *rec)
		}
	}
	a.results = results
}

func (a *App) Rename(ctx context.Context, arg, name string) error {
	f, _, err := a.pick(arg)
	if err != nil {
		return err
	}

	rec, err := a.files.Rename(ctx, f.ID, name)
	if err != nil {
		return err
	}
	a.replaceResult(f.ID, &rec)
	a.out.Successf("Renamed %s to %s\n", f.Name, rec.Name)
	return nil
}

// Delete removes the file from the store and from the last listing; the
// numbers of the files after it shift down.
func (a *App) Delete(ctx context.Context, arg string) error {
	f, _, err := a.pick(arg)
	if err != nil {
		return err
	}

	if err := a.files.Delete(ctx, f.ID); err != nil {
		return err
	}
	a.replaceResult(f.ID, nil)
	a.out.Successf("Deleted %s\n", f.Name)

	a.refreshUsage(ctx)
	return nil
}

func (a *App) Download(ctx context.Context, arg, dir string) error {
	f, _, err := a.pick(arg)
	if err != nil {
		return err
	}

	path, err := a.files.Download(ctx, f, dir)
	if err != nil {
		return err
	}
	a.out.Successf("Saved %s (%s)\n", path, usage.FormatBytes(f.SizeBytes))
	return nil
}

func (a *App) Upload(ctx context.Context, paths []string) error {
	files := make([]remote.LocalFile, 0, len(paths))
	for _, p := range paths {
		f, err := filex.OpenLocal(p)
		if err != nil {
			a.out.Failf("Skipping %s: %v\n", p, err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return errors.New("nothing to upload")
	}

	// Uploads outlive the command; they stop on cancel or Close.
	tasks := a.uploads.Enqueue(context.WithoutCancel(ctx), files)

	queued := lo.CountBy(tasks, func(t models.UploadTask) bool { return t.State != models.TaskRejected })
	a.out.Printf("Queued %d of %d files, see 'tasks'\n", queued, len(tasks))
	return nil
}

func (a *App) Tasks(ctx context.Context) error {
	tasks := a.uploads.Snapshot()
	if len(tasks) == 0 {
		a.out.Println("No uploads.")
		return nil
	}
	rows := lo.Map(tasks, func(t models.UploadTask, _ int) []string {
		state := string(t.State)
		if t.Err != nil {
			state += ": " + t.Err.Error()
		}
		return []string{shortID(t.ID), a.out.truncate(t.Name), usage.FormatBytes(t.SizeBytes), progressBar(t.ProgressPercent), state}
	})
	a.out.Table([]string{"ID", "Name", "Size", "Progress", "State"}, rows)
	return nil
}

// Cancel removes the upload whose id starts with id.
func (a *App) Cancel(ctx context.Context, id string) error {
	matches := lo.Filter(a.uploads.Snapshot(), func(t models.UploadTask, _ int) bool {
		return strings.HasPrefix(t.ID, id)
	})
	switch len(matches) {
	case 0:
		return fmt.Errorf("no upload %q", id)
	case 1:
	default:
		return fmt.Errorf("upload id %q is ambiguous", id)
	}

	if !a.uploads.Remove(matches[0].ID) {
		return fmt.Errorf("upload %q already finished", id)
	}
	a.out.Printf("Cancelled %s\n", matches[0].Name)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	sess, err := a.session.Current()
	if err != nil {
		a.out.Warnf("Session: %v\n", err)
	}

	r, err := a.files.Usage(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.usage = &r
	location := a.location
	a.mu.Unlock()

	expires := "never"
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.Local().Format(dateLayout)
	}
	active := lo.CountBy(a.uploads.Snapshot(), func(t models.UploadTask) bool { return !t.State.Terminal() })

	a.out.Table([]string{"Field", "Value"}, [][]string{
		{"Mode", string(a.mode())},
		{"Account", sess.AccountID},
		{"Owner", fmt.Sprintf("%s (%s)", sess.OwnerName, sess.OwnerID)},
		{"Session expires", expires},
		{"Used", fmt.Sprintf("%s of %s (%.1f%%)", usage.FormatBytes(r.TotalBytes), usage.FormatBytes(r.LimitBytes), r.Percent())},
		{"Active uploads", strconv.Itoa(active)},
		{"Location", location},
	})
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
