package instance

import "fmt"

// ProcessError reports a script that exited with a non-zero status.
type ProcessError struct {
	Script   string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Script, e.ExitCode, e.Stderr)
}

// ParseError reports provisioning output whose final line is not a JSON object.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse instance details: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a provisioning payload without a required key.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("instance details missing %q", e.Field)
}
