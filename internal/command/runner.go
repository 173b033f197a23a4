// Package command runs external CLIs with a timeout and stderr-aware errors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Executor is what callers depend on; tests swap in a fake.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// waitDelay bounds how long Run waits for output pipes held open by
// descendants once the command has been killed.
const waitDelay = 200 * time.Millisecond

type Runner struct {
	Dir     string
	Timeout time.Duration
	Env     []string
}

// Run executes name with args and returns stdout. A zero Timeout only
// honours ctx.
func (r Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = r.Dir
	if len(r.Env) > 0 {
		c.Env = append(c.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.WaitDelay = waitDelay
	setProcessGroup(c)
	c.Cancel = func() error { return killProcessGroup(c) }
	if err := c.Start(); err != nil {
		return nil, formatError(name, args, err, stderr.String())
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	var timeout <-chan time.Time
	if r.Timeout > 0 {
		timer := time.NewTimer(r.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil && ctx.Err() != nil {
			return nil, formatError(name, args, ctx.Err(), stderr.String())
		}
		if err != nil {
			return nil, formatError(name, args, err, stderr.String())
		}
		return stdout.Bytes(), nil
	case <-timeout:
		_ = killProcessGroup(c)
		<-done
		return nil, formatError(name, args, fmt.Errorf("command timed out after %s", r.Timeout), stderr.String())
	case <-ctx.Done():
		_ = killProcessGroup(c)
		<-done
		cause := ctx.Err()
		if cause == nil {
			cause = errors.New("context canceled")
		}
		return nil, formatError(name, args, cause, stderr.String())
	}
}

func formatError(name string, args []string, cause error, stderr string) error {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("%s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("%s: %w", cmd, cause)
}
