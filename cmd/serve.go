package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/demo-launcher/internal/config"
)

// newServeCmd creates the 'serve' subcommand, which runs the HTTP server until
// SIGINT or SIGTERM.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP server",
		Long: `Loads configuration, then serves /launch and /kill until interrupted.
On shutdown the server stops accepting requests and waits for background
teardowns up to server.drain_timeout_seconds.`,
		Args: cobra.NoArgs,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}

	if err := app.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
