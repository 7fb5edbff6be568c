// Package script runs the external provisioning and teardown scripts as child
// processes.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/JakeFAU/demo-launcher/internal/instance"
)

// ExecRunner implements instance.Runner with os/exec.
type ExecRunner struct{}

// New creates an ExecRunner.
func New() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd, waits for it to exit and returns its captured output. A
// non-zero exit status is not an error here; callers inspect ExitCode.
func (ExecRunner) Run(ctx context.Context, cmd instance.Command) (instance.ProcessResult, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := instance.ProcessResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return res, nil
}
