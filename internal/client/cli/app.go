package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/grpcserver"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/classify"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/client"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/config"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/remote"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/search"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/services"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/uploads"
	"github.com/dmitrijs2005/cloudkeeper/internal/common"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/go-co-op/gocron"
	"golang.org/x/term"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Deps are the collaborators of an App. NewApp builds them from the
// configuration; tests pass their own.
type Deps struct {
	Store   remote.RemoteStore
	Session services.SessionService
	Logger  logging.Logger
	In      io.Reader
	Out     io.Writer
	// Color enables ANSI colours in the output.
	Color bool
	// Closers run on Close after the runtime has stopped, in order.
	Closers []func() error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	files   services.FileService
	session services.SessionService
	uploads *uploads.Orchestrator
	search  *search.Controller
	closers []func() error

	in  io.Reader
	out *output

	mu        sync.Mutex
	Mode      Mode
	usage     *models.UsageReport
	location  string
	query     string
	results   []models.FileRecord
	searchHit bool
	scheduler *gocron.Scheduler
	closeOnce sync.Once
}

// NewApp connects to the configured backend and assembles the shell.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, os.Stderr)

	deps, err := connect(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	deps.Logger = logger
	deps.In = os.Stdin
	deps.Out = os.Stdout
	fd := int(os.Stdout.Fd())
	deps.Color = term.IsTerminal(fd)

	a, err := New(c, deps)
	if err != nil {
		_ = deps.Session.Close()
		_ = closeAll(deps.Closers)
		return nil, err
	}
	if deps.Color {
		if w, _, err := term.GetSize(fd); err == nil {
			a.out.width = w
		}
	}
	return a, nil
}

// connect opens the store and resolves the session token.
func connect(ctx context.Context, c *config.Config, logger logging.Logger) (Deps, error) {
	var (
		deps  Deps
		token = c.Token
		probe client.Prober
	)

	switch c.Backend {
	case config.BackendEmbedded:
		b, err := backend.New(ctx, c.BackendConfig(), backend.WithLogger(logger))
		if err != nil {
			return Deps{}, fmt.Errorf("embedded backend: %w", err)
		}
		deps.Closers = append(deps.Closers, b.Close)

		if token == "" {
			token, err = b.IssueSession(ctx, auth.Session{AccountID: c.AccountID, OwnerID: c.OwnerID, OwnerName: c.OwnerName})
			if err != nil {
				_ = b.Close()
				return Deps{}, fmt.Errorf("issue session: %w", err)
			}
		}
		store, err := b.ForSession(token)
		if err != nil {
			_ = b.Close()
			return Deps{}, fmt.Errorf("open session: %w", err)
		}
		deps.Store = store
		probe = client.HealthFunc(b.Health)

	case config.BackendHTTP:
		if token == "" {
			return Deps{}, fmt.Errorf("http backend: %w", common.ErrUnauthorized)
		}
		store := remote.NewHTTPStore(c.Endpoint, token, remote.WithLogger(logger))
		deps.Store = store
		probe = client.HealthFunc(store.Health)

	default:
		return Deps{}, fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.HealthAddr != "" {
		gp, err := client.NewGRPCHealthProbe(c.HealthAddr, grpcserver.ServiceName, token)
		if err != nil {
			_ = closeAll(deps.Closers)
			return Deps{}, fmt.Errorf("health probe: %w", err)
		}
		probe = gp
	}

	deps.Session = services.NewSessionService(probe, nil)
	if _, err := deps.Session.Login(token); err != nil {
		_ = deps.Session.Close()
		_ = closeAll(deps.Closers)
		return Deps{}, err
	}
	return deps, nil
}

// New assembles an App around deps. deps.Session must hold a logged-in
// session.
func New(c *config.Config, deps Deps) (*App, error) {
	sess, err := deps.Session.Current()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	a := &App{
		config:   c,
		logger:   logging.OrDiscard(deps.Logger).With("module", "cli"),
		files:    services.NewFileService(deps.Store, 0),
		session:  deps.Session,
		closers:  deps.Closers,
		in:       deps.In,
		out:      newOutput(deps.Out, deps.Color),
		Mode:     ModeOnline,
		location: "/",
	}

	a.uploads = uploads.New(deps.Store, uploads.Options{
		MaxFileSize: c.MaxFileSize,
		Workers:     c.Workers,
		OwnerID:     sess.OwnerID,
		AccountID:   sess.AccountID,
	}, uploads.WithLogger(a.logger), uploads.WithNotifier(a))

	a.search = search.New(deps.Store, a, search.Options{
		Delay: c.SearchDelay,
		Limit: c.SearchLimit,
	}, search.WithLogger(a.logger))

	return a, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connection mode changed", "mode", mode)
		a.out.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// checkOnline probes the backend once.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.session.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "backend probe failed", "error", err)
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// refreshUsage reloads the usage report shown in the prompt.
func (a *App) refreshUsage(ctx context.Context) {
	r, err := a.files.Usage(ctx)
	if err != nil {
		a.logger.Warn(ctx, "usage refresh failed", "error", err)
		return
	}

	a.mu.Lock()
	wasOver := a.usage != nil && a.usage.OverQuota()
	a.usage = &r
	a.mu.Unlock()

	if r.OverQuota() && !wasOver {
		a.out.Warnf("Storage limit exceeded: %.0f%% used\n", r.UsedRatio*100)
	}
}

// StartWatcher schedules the liveness probe and usage refresh.
func (a *App) StartWatcher(ctx context.Context) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Every(a.config.HealthInterval).Do(a.checkOnline, ctx); err != nil {
		return fmt.Errorf("schedule health probe: %w", err)
	}
	if _, err := s.Every(a.config.RefreshInterval).Do(a.refreshUsage, ctx); err != nil {
		return fmt.Errorf("schedule usage refresh: %w", err)
	}

	s.StartAsync()

	a.mu.Lock()
	a.scheduler = s
	a.mu.Unlock()
	return nil
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := string(a.Mode)
	if a.usage != nil {
		s = fmt.Sprintf("%s %.0f%%", s, a.usage.Percent())
	}
	return fmt.Sprintf("(%s %s)", a.location, s)
}

// Run starts the watcher and the REPL; it blocks until the user exits or
// input ends, then releases everything.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.out.Println("Welcome to CloudKeeper (type 'help' for commands)")

	if err := a.StartWatcher(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.getStatus, a.in, a.out)
	return nil
}

// Close stops background work and the runtime, then the backend.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		s := a.scheduler
		a.mu.Unlock()
		if s != nil {
			s.Stop()
		}

		a.search.Close()
		a.uploads.Close()

		if err := a.session.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := closeAll(a.closers); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func closeAll(fns []func() error) error {
	var errs []error
	for _, fn := range fns {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Navigate implements search.Navigator.
func (a *App) Navigate(section classify.Section, query string) {
	a.mu.Lock()
	a.location = section.Path(query)
	a.query = query
	a.mu.Unlock()
}

// ClearQuery implements search.Navigator.
func (a *App) ClearQuery() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.query = ""
	if i := strings.IndexByte(a.location, '?'); i >= 0 {
		a.location = a.location[:i]
	}
}
