// Package provision drives the external provisioning and teardown scripts:
// Launcher runs provisioning synchronously and parses its output, Terminator
// runs teardown as fire-and-forget background tasks.
package provision

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/demo-launcher/internal/instance"
	"github.com/JakeFAU/demo-launcher/internal/metrics"
)

// LauncherConfig controls how the provisioning script is invoked.
type LauncherConfig struct {
	Script   string
	Args     []string
	Dir      string
	DemoPort int
}

// Launcher provisions an instance by running the provisioning script to completion.
type Launcher struct {
	runner instance.Runner
	clock  instance.Clock
	cfg    LauncherConfig
	logger *zap.Logger
}

// NewLauncher constructs a Launcher.
func NewLauncher(runner instance.Runner, clock instance.Clock, cfg LauncherConfig, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		runner: runner,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Launch runs the provisioning script and returns the new instance's details.
// It blocks for as long as the script runs; ctx is passed to the runner as-is,
// so callers that must not abort provisioning should hand in a context that is
// never canceled.
func (l *Launcher) Launch(ctx context.Context) (instance.Details, error) {
	l.logger.Info("launching instance",
		zap.String("script", l.cfg.Script),
		zap.Strings("args", l.cfg.Args),
	)
	start := l.clock.Now()
	res, err := l.runner.Run(ctx, instance.Command{
		Path: l.cfg.Script,
		Args: l.cfg.Args,
		Dir:  l.cfg.Dir,
	})
	elapsed := l.clock.Now().Sub(start)
	if err != nil {
		l.logger.Error("failed to run provisioning script", zap.Error(err), zap.Duration("elapsed", elapsed))
		metrics.ObserveLaunch(metrics.OutcomeError, elapsed)
		return instance.Details{}, fmt.Errorf("launch instance: %w", err)
	}
	if res.ExitCode != 0 {
		procErr := &instance.ProcessError{
			Script:   l.cfg.Script,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
		l.logger.Error("failed to launch instance",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", res.Stderr),
			zap.Duration("elapsed", elapsed),
		)
		metrics.ObserveLaunch(metrics.OutcomeProcessFailure, elapsed)
		return instance.Details{}, procErr
	}
	l.logger.Info("instance launch completed", zap.Duration("duration", elapsed))

	details, err := ParseDetails(res.Stdout)
	if err != nil {
		var missing *instance.MissingFieldError
		if errors.As(err, &missing) {
			l.logger.Error("missing expected data in instance details",
				zap.String("field", missing.Field),
				zap.Duration("elapsed", elapsed),
			)
			metrics.ObserveLaunch(metrics.OutcomeMissingField, elapsed)
		} else {
			l.logger.Error("failed to parse instance details",
				zap.Error(err),
				zap.Duration("elapsed", elapsed),
			)
			metrics.ObserveLaunch(metrics.OutcomeParseFailure, elapsed)
		}
		return instance.Details{}, err
	}
	details.DemoPort = l.cfg.DemoPort

	l.logger.Info("instance details",
		zap.String("instance_id", details.InstanceID),
		zap.String("public_ip", details.PublicIP),
		zap.String("public_dns", details.PublicDNS),
		zap.String("url", details.URL()),
	)
	metrics.ObserveLaunch(metrics.OutcomeSuccess, elapsed)
	return details, nil
}
