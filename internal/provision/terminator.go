package provision

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/JakeFAU/demo-launcher/internal/instance"
	"github.com/JakeFAU/demo-launcher/internal/metrics"
)

// TerminatorConfig controls how the teardown script is invoked.
type TerminatorConfig struct {
	Script string
	Dir    string
}

// Terminator runs the teardown script in background goroutines. Outcomes are
// reported only through logs and metrics; nothing is returned to the caller.
type Terminator struct {
	runner   instance.Runner
	clock    instance.Clock
	idGen    instance.IDGenerator
	cfg      TerminatorConfig
	logger   *zap.Logger
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// NewTerminator constructs a Terminator.
func NewTerminator(
	runner instance.Runner,
	clock instance.Clock,
	idGen instance.IDGenerator,
	cfg TerminatorConfig,
	logger *zap.Logger,
) *Terminator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminator{
		runner: runner,
		clock:  clock,
		idGen:  idGen,
		cfg:    cfg,
		logger: logger,
	}
}

// Schedule starts tearing down instanceID in the background and returns the
// task ID used to correlate its log lines. It never blocks on the script.
func (t *Terminator) Schedule(instanceID string) string {
	taskID, err := t.idGen.NewID()
	if err != nil {
		t.logger.Warn("task id generation failed", zap.Error(err))
		taskID = "unknown"
	}

	t.wg.Add(1)
	t.inFlight.Add(1)
	metrics.IncTerminationsInFlight()
	go func() {
		defer t.wg.Done()
		defer t.inFlight.Add(-1)
		defer metrics.DecTerminationsInFlight()
		// Teardown must outlive the request that scheduled it.
		t.terminate(context.Background(), taskID, instanceID)
	}()
	return taskID
}

func (t *Terminator) terminate(ctx context.Context, taskID, instanceID string) {
	logger := t.logger.With(
		zap.String("task_id", taskID),
		zap.String("instance_id", instanceID),
	)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("error during instance termination", zap.Any("panic", rec))
			metrics.ObserveTermination(metrics.OutcomeError, 0)
		}
	}()

	logger.Info("terminating instance", zap.String("script", t.cfg.Script))
	start := t.clock.Now()
	res, err := t.runner.Run(ctx, instance.Command{
		Path: t.cfg.Script,
		Args: []string{instanceID},
		Dir:  t.cfg.Dir,
	})
	elapsed := t.clock.Now().Sub(start)
	if err != nil {
		logger.Error("error during instance termination", zap.Error(err), zap.Duration("elapsed", elapsed))
		metrics.ObserveTermination(metrics.OutcomeError, elapsed)
		return
	}
	logger.Info("instance termination completed", zap.Duration("duration", elapsed))

	if res.ExitCode != 0 {
		logger.Error("failed to terminate instance",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", strings.TrimSpace(res.Stderr)),
		)
		metrics.ObserveTermination(metrics.OutcomeProcessFailure, elapsed)
		return
	}
	logger.Info("termination details", zap.String("output", strings.TrimSpace(res.Stdout)))
	logger.Info("instance terminated successfully")
	metrics.ObserveTermination(metrics.OutcomeSuccess, elapsed)
}

// InFlight reports how many teardown tasks are still running.
func (t *Terminator) InFlight() int64 {
	return t.inFlight.Load()
}

// Wait blocks until every scheduled task has finished or ctx ends. Tasks still
// running when ctx ends are left alone.
func (t *Terminator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for terminations (%d still running): %w", t.InFlight(), ctx.Err())
	}
}
