// Package search drives the debounced incremental search box.
package search

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/observe"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
)

const (
	DefaultDelay = 300 * time.Millisecond
	DefaultLimit = 5
)

// Navigator reflects search state in the current navigation location.
type Navigator interface {
	Navigate(section classify.Section, query string)
	ClearQuery()
}

type nopNavigator struct{}

func (nopNavigator) Navigate(classify.Section, string) {}
func (nopNavigator) ClearQuery()                       {}

type Options struct {
	// Delay is how long the query must stay unchanged before dispatch.
	Delay time.Duration
	// Limit is the number of results requested.
	Limit int
}

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = logging.OrDiscard(l) }
}

// Controller owns one SearchSession. gen invalidates pending debounce timers
// and seq invalidates in-flight requests.
type Controller struct {
	store remote.Lister
	nav   Navigator
	opts  Options
	log   logging.Logger

	mu        sync.Mutex
	session   models.SearchSession
	timer     *time.Timer
	gen       uint64
	seq       uint64
	cancelReq context.CancelFunc
	closed    bool

	root context.Context
	stop context.CancelFunc
	feed *observe.Feed[models.SearchSession]
	wg   sync.WaitGroup
}

func New(store remote.Lister, nav Navigator, opts Options, options ...Option) *Controller {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if nav == nil {
		nav = nopNavigator{}
	}

	root, stop := context.WithCancel(context.Background())
	c := &Controller{
		store: store,
		nav:   nav,
		opts:  opts,
		log:   logging.Discard(),
		root:  root,
		stop:  stop,
		feed:  observe.NewFeed[models.SearchSession](),
	}
	for _, fn := range options {
		fn(c)
	}
	return c
}

// OnQueryChange records text as typed. A non-empty query is dispatched once
// it has been stable for the delay; an empty one clears the session at once.
func (c *Controller) OnQueryChange(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.session.RawQuery = text
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}

	q := strings.TrimSpace(text)
	if q == "" {
		c.reset()
		c.publish()
		c.mu.Unlock()
		c.nav.ClearQuery()
		return
	}

	gen := c.gen
	c.timer = time.AfterFunc(c.opts.Delay, func() { c.fire(gen, q) })
	c.publish()
	c.mu.Unlock()
}

func (c *Controller) fire(gen uint64, q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.dispatch(q)
}

// dispatch supersedes any in-flight request. Callers hold mu.
func (c *Controller) dispatch(q string) {
	if c.cancelReq != nil {
		c.cancelReq()
	}
	c.seq++
	seq := c.seq

	ctx, cancel := context.WithCancel(c.root)
	c.cancelReq = cancel

	c.session.EffectiveQuery = q
	c.session.IsLoading = true
	c.session.IsOpen = true
	c.session.Err = nil
	c.publish()

	c.wg.Add(1)
	go c.fetch(ctx, seq, q)
}

func (c *Controller) fetch(ctx context.Context, seq uint64, q string) {
	defer c.wg.Done()

	list, err := c.store.ListFiles(ctx, remote.ListQuery{SearchText: q, Limit: c.opts.Limit})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		c.log.Debug(ctx, "discarding stale search response", "query", q, "seq", seq)
		return
	}

	c.session.IsLoading = false
	if err != nil {
		c.log.Warn(ctx, "search failed", "query", q, "error", err)
		c.session.Results = nil
		c.session.Err = &remote.QueryError{Query: q, Err: err}
	} else {
		c.session.Results = list.Files
		c.session.Err = nil
	}
	c.publish()
}

// reset empties the session and invalidates pending work. Callers hold mu.
func (c *Controller) reset() {
	c.gen++
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancelReq != nil {
		c.cancelReq()
		c.cancelReq = nil
	}
	c.session = models.SearchSession{RawQuery: c.session.RawQuery}
}

// Select clears the session and navigates to the section file is browsed
// under, carrying the current query.
func (c *Controller) Select(file models.FileRecord) {
	c.mu.Lock()
	q := c.session.EffectiveQuery
	if q == "" {
		q = strings.TrimSpace(c.session.RawQuery)
	}
	c.reset()
	c.session.RawQuery = ""
	c.publish()
	c.mu.Unlock()

	c.nav.Navigate(classify.RouteFor(file.Category), q)
}

// Clear empties the session without touching navigation.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.reset()
	c.session.RawQuery = ""
	c.publish()
}

// Session returns a copy of the current state.
func (c *Controller) Session() models.SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() models.SearchSession {
	s := c.session
	s.Results = slices.Clone(s.Results)
	return s
}

// publish emits the current state. Callers hold mu.
func (c *Controller) publish() {
	c.feed.Publish(c.snapshot())
}

// Subscribe streams session states in the order they were applied.
func (c *Controller) Subscribe() (<-chan models.SearchSession, func()) {
	return c.feed.Subscribe()
}

// Close cancels the pending timer and request and detaches subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.stop()
	c.mu.Unlock()

	c.wg.Wait()
	c.feed.Close()
}
