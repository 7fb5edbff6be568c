package provision

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/demo-launcher/internal/instance"
)

type fakeRunner struct {
	mu       sync.Mutex
	result   instance.ProcessResult
	err      error
	panicVal any
	release  chan struct{}
	commands []instance.Command
}

func (f *fakeRunner) Run(ctx context.Context, cmd instance.Command) (instance.ProcessResult, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return instance.ProcessResult{}, ctx.Err()
		}
	}
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	return f.result, f.err
}

func (f *fakeRunner) calls() []instance.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]instance.Command, len(f.commands))
	copy(out, f.commands)
	return out
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type fakeIDGen struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeIDGen) NewID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if len(f.ids) == 0 {
		return "task-default", nil
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

var errSpawn = errors.New("fork/exec ./kill_instance.sh: no such file or directory")

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}
