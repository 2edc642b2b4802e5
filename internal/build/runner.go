// Package build constructs and runs the build, version, and smoke-test
// commands for one platform and channel, and collects the artifacts they
// produce. The build tool itself is an external collaborator reached
// through the Runner seam.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is one external invocation.
type Command struct {
	// Argv is the program and its arguments.
	Argv []string

	// Dir is the working directory the command runs in.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string
}

// String returns the command line as a single string.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes the command and captures its output. A non-zero exit is
// returned as an error alongside the captured Result.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if len(c.Argv) == 0 {
		return Result{}, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("%s failed with exit code %d", c, res.ExitCode)
		}
		return res, fmt.Errorf("%s: %w", c, err)
	}

	return res, nil
}
