// Package command executes external conversion tools as parameterized
// subprocesses with captured diagnostics.
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

// stderrTailBytes bounds the diagnostic text attached to failures.
const stderrTailBytes = 4096

// Spec describes one tool invocation. Arguments are always passed as an
// explicit list; nothing is ever routed through a shell.
type Spec struct {
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result captures the output of a completed invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Runner abstracts subprocess execution for testability.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// NewRunner returns the production Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	if strings.TrimSpace(spec.Binary) == "" {
		return Result{}, errors.New("binary required")
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Binary, spec.Args...) //nolint:gosec
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return result, fmt.Errorf("%s timed out after %s", spec.Binary, spec.Timeout)
		}
		detail := Tail(result.Stderr)
		if detail == "" {
			detail = Tail(result.Stdout)
		}
		if detail != "" {
			return result, fmt.Errorf("%s: %w: %s", spec.Binary, err, detail)
		}
		return result, fmt.Errorf("%s: %w", spec.Binary, err)
	}
	return result, nil
}

// Tail returns the trailing portion of tool output suitable for error text.
func Tail(output string) string {
	trimmed := strings.TrimSpace(output)
	if len(trimmed) > stderrTailBytes {
		trimmed = trimmed[len(trimmed)-stderrTailBytes:]
	}
	return trimmed
}

// Available reports whether a binary resolves on PATH (or as a direct path).
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
