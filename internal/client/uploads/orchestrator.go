// Package uploads drives concurrent multi-file uploads through the
// queued -> uploading -> completed|rejected|failed lifecycle.
package uploads

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/observe"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/google/uuid"
)

type task struct {
	view      models.UploadTask
	file      remote.LocalFile
	cancel    context.CancelFunc
	stopTick  chan struct{}
	grace     *time.Timer
	simulated int
	real      int
}

// Orchestrator owns the active upload set. Every mutation happens under mu
// and is published to the feed before the lock is released.
type Orchestrator struct {
	store    remote.Uploader
	opts     Options
	log      logging.Logger
	notifier Notifier

	mu     sync.Mutex
	tasks  map[string]*task
	order  []string
	closed bool

	feed *observe.Feed[Event]
	sem  chan struct{}
	wg   sync.WaitGroup
	now  func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.OrDiscard(l) }
}

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

func New(store remote.Uploader, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		opts:     opts.withDefaults(),
		log:      logging.Discard(),
		notifier: nopNotifier{},
		tasks:    make(map[string]*task),
		feed:     observe.NewFeed[Event](),
		now:      time.Now,
	}
	for _, fn := range options {
		fn(o)
	}
	if o.opts.Workers > 0 {
		o.sem = make(chan struct{}, o.opts.Workers)
	}
	return o
}

// Options returns the effective options.
func (o *Orchestrator) Options() Options { return o.opts }

// Enqueue creates one task per file and returns their initial state. Files
// above the size limit come back rejected and never enter the active set.
// Cancelling ctx aborts the accepted uploads.
func (o *Orchestrator) Enqueue(ctx context.Context, files []remote.LocalFile) []models.UploadTask {
	out := make([]models.UploadTask, 0, len(files))
	var rejected []models.UploadTask

	o.mu.Lock()
	for _, f := range files {
		cls := classify.ClassifyWithMIME(f.Name(), f.ContentType())
		view := models.UploadTask{
			ID:          uuid.NewString(),
			Name:        f.Name(),
			SizeBytes:   f.Size(),
			ContentType: f.ContentType(),
			Category:    cls.Category,
			Extension:   cls.Extension,
			State:       models.TaskQueued,
			EnqueuedAt:  o.now(),
		}

		if o.closed {
			view.State = models.TaskFailed
			view.Err = remote.AsUploadError(view.Name, context.Canceled)
			out = append(out, view)
			continue
		}

		if view.SizeBytes > o.opts.MaxFileSize {
			view.State = models.TaskRejected
			view.Err = &OversizeError{Name: view.Name, Size: view.SizeBytes, Limit: o.opts.MaxFileSize}
			o.feed.Publish(Event{Task: view})
			rejected = append(rejected, view)
			out = append(out, view)
			continue
		}

		taskCtx, cancel := context.WithCancel(ctx)
		t := &task{view: view, file: f, cancel: cancel, stopTick: make(chan struct{})}
		o.tasks[view.ID] = t
		o.order = append(o.order, view.ID)
		o.feed.Publish(Event{Task: view})
		out = append(out, view)

		o.wg.Add(1)
		go o.run(taskCtx, t)
	}
	o.mu.Unlock()

	for _, r := range rejected {
		o.log.Warn(ctx, "upload rejected", "name", r.Name, "size", r.SizeBytes, "limit", o.opts.MaxFileSize)
		o.notifier.UploadRejected(r, o.opts.MaxFileSize)
	}
	return out
}

// tracked reports whether t is still the live task for its id. Callers hold mu.
func (o *Orchestrator) tracked(t *task) bool {
	return o.tasks[t.view.ID] == t
}

func (o *Orchestrator) run(ctx context.Context, t *task) {
	defer o.wg.Done()
	defer t.cancel()

	if o.sem != nil {
		select {
		case o.sem <- struct{}{}:
			defer func() { <-o.sem }()
		case <-ctx.Done():
			o.finish(ctx, t, models.FileRecord{}, ctx.Err())
			return
		}
	}

	o.mu.Lock()
	if !o.tracked(t) || o.closed {
		o.mu.Unlock()
		return
	}
	t.view.State = models.TaskUploading
	o.feed.Publish(Event{Task: t.view})
	o.wg.Add(1)
	go o.tick(t)
	o.mu.Unlock()

	o.log.Debug(ctx, "upload started", "id", t.view.ID, "name", t.view.Name)

	rec, err := o.store.UploadFile(ctx, remote.UploadRequest{
		File:      t.file,
		OwnerID:   o.opts.OwnerID,
		AccountID: o.opts.AccountID,
		Progress:  func(sent int64) { o.reportBytes(t, sent) },
	})
	o.finish(ctx, t, rec, err)
}

func (o *Orchestrator) tick(t *task) {
	defer o.wg.Done()

	tk := time.NewTicker(o.opts.ProgressInterval)
	defer tk.Stop()

	for {
		select {
		case <-tk.C:
			o.mu.Lock()
			if o.tracked(t) && t.view.State == models.TaskUploading {
				t.simulated = min(t.simulated+o.opts.ProgressStep, o.opts.ProgressCap)
				o.raiseProgress(t)
			}
			o.mu.Unlock()
		case <-t.stopTick:
			return
		}
	}
}

func (o *Orchestrator) reportBytes(t *task, sent int64) {
	size := t.view.SizeBytes
	if size <= 0 {
		return
	}
	pct := int(min(sent, size) * 100 / size)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.tracked(t) || t.view.State != models.TaskUploading {
		return
	}
	t.real = max(t.real, pct)
	o.raiseProgress(t)
}

// raiseProgress publishes a new value only when it grows; the acknowledged
// 100 is reserved for completion. Callers hold mu.
func (o *Orchestrator) raiseProgress(t *task) {
	p := min(max(t.simulated, t.real), 99)
	if p <= t.view.ProgressPercent {
		return
	}
	t.view.ProgressPercent = p
	o.feed.Publish(Event{Task: t.view})
}

func stopTicker(t *task) {
	select {
	case <-t.stopTick:
	default:
		close(t.stopTick)
	}
}

func (o *Orchestrator) finish(ctx context.Context, t *task, rec models.FileRecord, err error) {
	o.mu.Lock()
	stopTicker(t)
	if !o.tracked(t) || o.closed {
		o.mu.Unlock()
		o.log.Debug(ctx, "discarding result of untracked upload", "id", t.view.ID)
		return
	}

	if err != nil {
		t.view.State = models.TaskFailed
		t.view.Err = remote.AsUploadError(t.view.Name, err)
		view := t.view
		o.feed.Publish(Event{Task: view})
		o.mu.Unlock()

		o.log.Error(ctx, "upload failed", "id", view.ID, "name", view.Name, "error", err)
		o.notifier.UploadFailed(view, view.Err)
		return
	}

	t.view.State = models.TaskCompleted
	t.view.ProgressPercent = 100
	t.view.Record = &rec
	view := t.view
	o.feed.Publish(Event{Task: view})
	t.grace = time.AfterFunc(o.opts.GracePeriod, func() { o.evict(t) })
	o.mu.Unlock()

	o.log.Info(ctx, "upload completed", "id", view.ID, "name", view.Name, "file_id", rec.ID)
	o.notifier.UploadCompleted(view)
}

func (o *Orchestrator) evict(t *task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.tracked(t) {
		return
	}
	o.detach(t)
	o.feed.Publish(Event{Task: t.view, Evicted: true})
}

// detach drops t from the active set. Callers hold mu.
func (o *Orchestrator) detach(t *task) {
	delete(o.tasks, t.view.ID)
	if i := slices.Index(o.order, t.view.ID); i >= 0 {
		o.order = slices.Delete(o.order, i, i+1)
	}
}

// Remove cancels and forgets a task in any state. Results arriving for it
// afterwards are ignored.
func (o *Orchestrator) Remove(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, ok := o.tasks[id]
	if !ok {
		return false
	}
	o.detach(t)
	t.cancel()
	stopTicker(t)
	if t.grace != nil {
		t.grace.Stop()
	}
	t.view.State = models.TaskRemoved
	o.feed.Publish(Event{Task: t.view, Evicted: true})
	return true
}

// Snapshot returns copies of the active tasks in enqueue order.
func (o *Orchestrator) Snapshot() []models.UploadTask {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.UploadTask, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.tasks[id].view)
	}
	return out
}

func (o *Orchestrator) Get(id string) (models.UploadTask, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.tasks[id]
	if !ok {
		return models.UploadTask{}, false
	}
	return t.view, true
}

// Subscribe streams task changes in the order they were applied.
func (o *Orchestrator) Subscribe() (<-chan Event, func()) {
	return o.feed.Subscribe()
}

// Wait blocks until every started transfer has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close aborts in-flight transfers, stops pending timers and detaches all
// subscribers. Active tasks are kept for inspection but no longer change.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	for _, t := range o.tasks {
		t.cancel()
		stopTicker(t)
		if t.grace != nil {
			t.grace.Stop()
		}
	}
	o.mu.Unlock()

	o.wg.Wait()
	o.feed.Close()
}
