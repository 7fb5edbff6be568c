// Package server provides the core application server and dependency wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/demo-launcher/internal/api"
	"github.com/JakeFAU/demo-launcher/internal/clock/system"
	"github.com/JakeFAU/demo-launcher/internal/config"
	"github.com/JakeFAU/demo-launcher/internal/id/uuid"
	"github.com/JakeFAU/demo-launcher/internal/instance"
	"github.com/JakeFAU/demo-launcher/internal/logging"
	"github.com/JakeFAU/demo-launcher/internal/provision"
	"github.com/JakeFAU/demo-launcher/internal/script"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	apiServer  *api.Server
	terminator *provision.Terminator
}

// Build creates the application's dependencies with the real script runner.
func Build(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.OutputPaths)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return New(cfg, script.New(), logger), nil
}

// New wires an App around the given runner. Tests use it to substitute the runner.
func New(cfg config.Config, runner instance.Runner, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("creating application",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("provision_script", cfg.Provision.Script),
		zap.String("teardown_script", cfg.Teardown.Script),
	)

	clock := system.New()
	idGen := uuid.New()
	launcher := provision.NewLauncher(runner, clock, provision.LauncherConfig{
		Script:   cfg.Provision.Script,
		Args:     cfg.Provision.Args,
		Dir:      cfg.Provision.Dir,
		DemoPort: cfg.Demo.Port,
	}, logger.Named("launcher"))
	terminator := provision.NewTerminator(runner, clock, idGen, provision.TerminatorConfig{
		Script: cfg.Teardown.Script,
		Dir:    cfg.Teardown.Dir,
	}, logger.Named("terminator"))

	return &App{
		cfg:        cfg,
		logger:     logger,
		apiServer:  api.NewServer(launcher, terminator, idGen, cfg, logger.Named("api")),
		terminator: terminator,
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run listens on the configured port and serves until ctx is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", a.cfg.Server.Port, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts the HTTP server
// down and drains background teardown tasks.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	runErr := g.Wait()
	drainCtx, cancel := context.WithTimeout(context.Background(), a.cfg.DrainTimeout())
	defer cancel()
	a.Close(drainCtx)
	return runErr
}

// Close waits for in-flight teardown tasks until ctx ends and flushes the logger.
func (a *App) Close(ctx context.Context) {
	if n := a.terminator.InFlight(); n > 0 {
		a.logger.Info("waiting for background terminations", zap.Int64("in_flight", n))
	}
	if err := a.terminator.Wait(ctx); err != nil {
		a.logger.Warn("abandoning background terminations", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
	if err := a.logger.Sync(); err != nil {
		// stderr/stdout sinks cannot be fsynced on most platforms.
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
}
