package provision

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/demo-launcher/internal/instance"
)

const validPayload = `{"InstanceId": "i-123", "PublicIpAddress": "1.2.3.4", "PublicDnsName": "ec2-1-2-3-4.example.com"}`

func newTestLauncher(runner instance.Runner) (*Launcher, *fakeClock) {
	clock := &fakeClock{now: time.Unix(100, 0), step: 42 * time.Second}
	logger, _ := newObservedLogger()
	return NewLauncher(runner, clock, LauncherConfig{
		Script:   "./run_instance.sh",
		Args:     []string{"-f"},
		Dir:      "/opt/demo",
		DemoPort: 8080,
	}, logger), clock
}

func TestLauncher_Launch_Succeeds(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{Stdout: "Waiting...\n" + validPayload}}
	launcher, _ := newTestLauncher(runner)

	d, err := launcher.Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "i-123", d.InstanceID)
	require.Equal(t, "1.2.3.4", d.PublicIP)
	require.Equal(t, "ec2-1-2-3-4.example.com", d.PublicDNS)
	require.Equal(t, "http://ec2-1-2-3-4.example.com:8080", d.URL())

	calls := runner.calls()
	require.Len(t, calls, 1)
	require.Equal(t, instance.Command{Path: "./run_instance.sh", Args: []string{"-f"}, Dir: "/opt/demo"}, calls[0])
}

func TestLauncher_Launch_LogsDuration(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{Stdout: validPayload}}
	logger, logs := newObservedLogger()
	clock := &fakeClock{now: time.Unix(0, 0), step: 42 * time.Second}
	launcher := NewLauncher(runner, clock, LauncherConfig{Script: "./run_instance.sh"}, logger)

	_, err := launcher.Launch(context.Background())
	require.NoError(t, err)

	completed := logs.FilterMessage("instance launch completed").All()
	require.Len(t, completed, 1)
	require.Equal(t, 42*time.Second, completed[0].ContextMap()["duration"])
}

func TestLauncher_Launch_NonZeroExit(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{ExitCode: 1, Stderr: "An error occurred (InstanceLimitExceeded)"}}
	launcher, _ := newTestLauncher(runner)

	_, err := launcher.Launch(context.Background())
	var procErr *instance.ProcessError
	require.ErrorAs(t, err, &procErr)
	require.Equal(t, 1, procErr.ExitCode)
	require.Equal(t, "An error occurred (InstanceLimitExceeded)", procErr.Stderr)
}

func TestLauncher_Launch_UnparseableOutput(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{Stdout: validPayload + "\nAll done"}}
	launcher, _ := newTestLauncher(runner)

	_, err := launcher.Launch(context.Background())
	var parseErr *instance.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "All done", parseErr.Line)
}

func TestLauncher_Launch_MissingField(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{Stdout: `{"InstanceId": "i-1", "PublicDnsName": "h"}`}}
	logger, logs := newObservedLogger()
	launcher := NewLauncher(runner, &fakeClock{}, LauncherConfig{Script: "./run_instance.sh"}, logger)

	_, err := launcher.Launch(context.Background())
	var missing *instance.MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, KeyPublicIP, missing.Field)
	require.Equal(t, 1, logs.FilterMessage("missing expected data in instance details").Len())
}

func TestLauncher_Launch_SpawnFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errSpawn}
	launcher, _ := newTestLauncher(runner)

	_, err := launcher.Launch(context.Background())
	require.ErrorIs(t, err, errSpawn)
}

func TestLauncher_Launch_UsesConfiguredDemoPort(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: instance.ProcessResult{Stdout: validPayload}}
	launcher := NewLauncher(runner, &fakeClock{}, LauncherConfig{Script: "./run_instance.sh", DemoPort: 6080}, nil)

	d, err := launcher.Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "http://ec2-1-2-3-4.example.com:6080", d.URL())
}
