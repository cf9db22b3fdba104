// Package server runs the embedded backend as a standalone service: the REST
// gateway over HTTP and the grpc.health.v1 service, stopped together on
// SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend"
	"github.com/dmitrijs2005/cloudkeeper/internal/backend/grpcserver"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Config holds the listener settings of the service.
//
// Fields:
//   - HTTPAddr: gateway listen address.
//   - GRPCAddr: health service listen address; empty disables it.
//   - RequireAuth: reject anonymous health checks.
//   - HealthInterval: how often the health status is recomputed.
type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	RequireAuth    bool
	HealthInterval time.Duration
	Backend        backend.Config
}

type App struct {
	config  Config
	logger  logging.Logger
	backend *backend.Backend
}

func NewApp(ctx context.Context, c Config, logger logging.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)

	if c.Backend.PublicURL == "" && c.HTTPAddr != "" {
		c.Backend.PublicURL = "http://" + c.HTTPAddr
	}

	b, err := backend.New(ctx, c.Backend, backend.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("backend init error: %w", err)
	}

	return &App{config: c, logger: logger.With("module", "server"), backend: b}, nil
}

// Backend exposes the running backend, e.g. to issue session tokens.
func (app *App) Backend() *backend.Backend { return app.backend }

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run listens on the configured addresses and serves until ctx is done or
// a signal arrives. The backend is closed on return.
func (app *App) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		_ = app.backend.Close()
		return err
	}

	var grpcLis net.Listener
	if app.config.GRPCAddr != "" {
		if grpcLis, err = net.Listen("tcp", app.config.GRPCAddr); err != nil {
			_ = httpLis.Close()
			_ = app.backend.Close()
			return err
		}
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(ctx, cancelFunc)

	return app.Serve(ctx, httpLis, grpcLis)
}

// Serve runs both servers on the given listeners; grpcLis may be nil. When
// one server fails the other is stopped too.
func (app *App) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	defer func() {
		if err := app.backend.Close(); err != nil {
			app.logger.Error(ctx, "backend close error", "error", err)
		}
	}()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.serveHTTP(ctx, httpLis); err != nil {
			fail(err)
		}
	}()

	if grpcLis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := grpcserver.NewGRPCServer(grpcLis.Addr().String(), app.logger, app.backend, app.config.HealthInterval, app.config.RequireAuth)
			if err := s.Serve(ctx, grpcLis); err != nil {
				fail(err)
			}
		}()
	}

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return errors.Join(errs...)
}

func (app *App) serveHTTP(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           backend.NewGateway(app.backend).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
