// Package tools wraps the external programs refdocs can delegate to:
// protoc with the protoc-gen-doc plugin, and cargo.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

var (
	// ErrUnavailable reports that a tool is not installed.
	ErrUnavailable = errors.New("tool unavailable")
	// ErrFailed reports that a tool ran but did not produce usable output.
	ErrFailed = errors.New("tool failed")
)

// Runner executes external commands. Tests substitute a fake.
type Runner interface {
	// Run executes name with args in dir and returns combined output.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return out, fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
