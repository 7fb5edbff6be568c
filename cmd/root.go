// Package cmd defines and implements the CLI commands for the launcher executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/demo-launcher/internal/config"
	"github.com/JakeFAU/demo-launcher/internal/server"
)

var cfgFile string

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Run(ctx context.Context) error
}

// newApp is the application factory. It's a variable so we can
// replace it with a fake factory in our tests.
var newApp = func(cfg config.Config) (App, error) {
	app, err := server.Build(cfg)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launcher",
		Short: "HTTP control surface for the demo instance.",
		Long: `launcher exposes two endpoints for a single demo environment:
POST /launch runs the provisioning script and returns the new instance's
details, POST /kill schedules the teardown script in the background.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (env vars prefixed LAUNCHER_ override it)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "command execution failed:", err)
		os.Exit(1)
	}
}
