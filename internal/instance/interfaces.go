package instance

import (
	"context"
	"time"
)

// Command describes one invocation of an external script.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the service's own.
	Dir string
}

// ProcessResult captures what a finished script wrote and how it exited.
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a script to completion. A non-zero exit is reported through
// ProcessResult.ExitCode; the error return is reserved for failures to start
// or communicate with the process.
type Runner interface {
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces correlation IDs for requests and background tasks.
type IDGenerator interface {
	NewID() (string, error)
}
