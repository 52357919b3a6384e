package pipeline

import (
	"fmt"
	"io"
)

// Outcome is the result of processing one input.
type Outcome struct {
	Input string
	// Source names what produced the pages: "protoc-gen-doc", "parser",
	// "rustdoc" or "placeholder".
	Source string
	Pages  []string
	Err    error
}

// Report collects per-input outcomes for one run.
type Report struct {
	Kind        string
	Outcomes    []Outcome
	Placeholder bool
	Skipped     bool
	Dangling    int
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

func (r *Report) Succeeded() int {
	return len(r.Outcomes) - r.Failed()
}

// Err decides the run's status from its outcomes. Individual failures only
// fail the run when nothing succeeded or strict is set.
func (r *Report) Err(strict bool) error {
	failed := r.Failed()
	switch {
	case failed == 0:
		return nil
	case failed == len(r.Outcomes):
		return fmt.Errorf("%s: %w (%d)", r.Kind, ErrAllFailed, failed)
	case strict:
		return fmt.Errorf("%s: %w (%d of %d)", r.Kind, ErrStrict, failed, len(r.Outcomes))
	default:
		return nil
	}
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	if r.Skipped {
		fmt.Fprintf(w, "%s: skipped (toolchain unavailable in CI)\n", r.Kind)
		return
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "  FAIL %s: %v\n", o.Input, o.Err)
			continue
		}
		fmt.Fprintf(w, "  ok   %s (%s, %d pages)\n", o.Input, o.Source, len(o.Pages))
	}
	fmt.Fprintf(w, "%s: %d succeeded, %d failed", r.Kind, r.Succeeded(), r.Failed())
	if r.Placeholder {
		fmt.Fprint(w, ", placeholder written")
	}
	if r.Dangling > 0 {
		fmt.Fprintf(w, ", %d dangling references", r.Dangling)
	}
	fmt.Fprintln(w)
}
