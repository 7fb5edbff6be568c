// Command launcher serves a minimal HTTP control surface for a single demo
// instance.
//
// Architecture overview:
//   - HTTP API: internal/api exposes POST /launch, POST /kill, probes and /metrics on a chi router with
//     request-ID, logging, recovery and Prometheus middleware.
//   - Provisioning: internal/provision.Launcher runs the provisioning script through internal/script, blocks
//     until it exits and parses the last non-empty stdout line as JSON.
//   - Teardown: internal/provision.Terminator runs the teardown script in a background goroutine per request.
//     Outcomes reach only the logs and metrics; the HTTP response never waits for them.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging;
//     cobra provides the CLI.
//
// Quick checklist:
//   - Configure env vars: LAUNCHER_SERVER_PORT or PORT, LAUNCHER_PROVISION_SCRIPT, LAUNCHER_TEARDOWN_SCRIPT,
//     LAUNCHER_LOGGING_OUTPUT_PATHS=app.log to keep a log file.
//   - Run locally: go run . serve --config launcher.yaml
package main

import "github.com/JakeFAU/demo-launcher/cmd"

func main() {
	cmd.Execute()
}
