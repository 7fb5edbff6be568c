// Package api hosts the HTTP server, middleware, and handlers for the demo
// launcher. Routes:
//   - POST /launch provisions an instance and returns its details.
//   - POST /kill schedules background teardown and acknowledges immediately.
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
package api
