package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/demo-launcher/internal/config"
)

type fakeApp struct {
	runErr error
	ran    bool
}

func (f *fakeApp) Run(context.Context) error {
	f.ran = true
	return f.runErr
}

// withFakeApp swaps the application factory for the duration of a test.
func withFakeApp(t *testing.T, app *fakeApp, buildErr error) *config.Config {
	t.Helper()
	var captured config.Config
	orig := newApp
	newApp = func(cfg config.Config) (App, error) {
		captured = cfg
		if buildErr != nil {
			return nil, buildErr
		}
		return app, nil
	}
	t.Cleanup(func() {
		newApp = orig
		cfgFile = ""
	})
	return &captured
}

func TestServeCommandLoadsConfigAndRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\nprovision:\n  script: /opt/run.sh\n"), 0o600))

	app := &fakeApp{}
	captured := withFakeApp(t, app, nil)

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--config", path})
	require.NoError(t, root.Execute())

	require.True(t, app.ran)
	require.Equal(t, 9999, captured.Server.Port)
	require.Equal(t, "/opt/run.sh", captured.Provision.Script)
}

func TestServeCommandIgnoresCancellation(t *testing.T) {
	withFakeApp(t, &fakeApp{runErr: context.Canceled}, nil)

	root := newRootCmd()
	root.SetArgs([]string{"serve"})
	require.NoError(t, root.Execute())
}

func TestServeCommandErrors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		withFakeApp(t, &fakeApp{}, nil)
		root := newRootCmd()
		root.SetArgs([]string{"serve", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
		require.ErrorContains(t, root.Execute(), "load config")
	})

	t.Run("build failure", func(t *testing.T) {
		withFakeApp(t, &fakeApp{}, errors.New("bad logger"))
		root := newRootCmd()
		root.SetArgs([]string{"serve"})
		require.ErrorContains(t, root.Execute(), "failed to initialize application services")
	})

	t.Run("run failure", func(t *testing.T) {
		withFakeApp(t, &fakeApp{runErr: errors.New("address in use")}, nil)
		root := newRootCmd()
		root.SetArgs([]string{"serve"})
		require.ErrorContains(t, root.Execute(), "address in use")
	})
}
