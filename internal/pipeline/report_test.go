package pipeline

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestReportErr(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")

	tests := []struct {
		name     string
		outcomes []Outcome
		strict   bool
		want     error
	}{
		{"empty", nil, true, nil},
		{"all ok", []Outcome{{Input: "a"}}, true, nil},
		{"partial", []Outcome{{Input: "a"}, {Input: "b", Err: boom}}, false, nil},
		{"partial strict", []Outcome{{Input: "a"}, {Input: "b", Err: boom}}, true, ErrStrict},
		{"all failed", []Outcome{{Input: "a", Err: boom}}, false, ErrAllFailed},
		{"all failed unreadable", []Outcome{{Input: "a.proto", Err: os.ErrPermission}, {Input: "b.proto", Err: os.ErrNotExist}}, false, ErrAllFailed},
	}

	for _, tt := range tests {
		r := &Report{Kind: "proto", Outcomes: tt.outcomes}
		err := r.Err(tt.strict)
		if tt.want == nil && err != nil {
			t.Errorf("%s: got %v, want nil", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestReportPrint(t *testing.T) {
	t.Parallel()
	r := &Report{
		Kind: "rustdoc",
		Outcomes: []Outcome{
			{Input: "lib", Source: "rustdoc", Pages: []string{"crate.mdx", "engine/net.mdx"}},
			{Input: "bin:x", Err: errors.New("cargo failed")},
		},
		Dangling: 3,
	}
	var buf bytes.Buffer
	r.Print(&buf)
	got := buf.String()

	for _, want := range []string{
		"  ok   lib (rustdoc, 2 pages)\n",
		"  FAIL bin:x: cargo failed\n",
		"rustdoc: 1 succeeded, 1 failed, 3 dangling references\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	buf.Reset()
	(&Report{Kind: "html", Skipped: true}).Print(&buf)
	if got, want := buf.String(), "html: skipped (toolchain unavailable in CI)\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
