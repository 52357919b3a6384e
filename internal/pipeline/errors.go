package pipeline

import (
	"errors"
	"fmt"

	"github.com/jcdickinson/refdocs/internal/tools"
)

var (
	// ErrSkippedCI means the toolchain is missing in a CI environment. The
	// run produces nothing and still succeeds.
	ErrSkippedCI = errors.New("toolchain unavailable in CI, skipping")
	// ErrToolUnavailable means a required external tool is not installed.
	ErrToolUnavailable = tools.ErrUnavailable
	// ErrToolFailed means an external tool ran but produced nothing usable.
	ErrToolFailed = tools.ErrFailed
	ErrNoInput    = errors.New("no input files")
	// ErrAllFailed is returned when every input of a run failed, whatever
	// the cause: an unreadable .proto file counts the same as a type graph
	// with no root, so a run that documented nothing never exits 0.
	ErrAllFailed = errors.New("every input failed")
	// ErrStrict is returned in strict mode when any input failed.
	ErrStrict = errors.New("inputs failed in strict mode")
)

// WriteError is a failure to write an output page. It aborts the run.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
