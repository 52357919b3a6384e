// Package pipeline discovers inputs, hands each one to the orchestrator and
// writes the resulting pages. Inputs are processed one at a time and a
// failed input never stops the run; only a failed write does.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcdickinson/refdocs/internal/cas"
	"github.com/jcdickinson/refdocs/internal/config"
	"github.com/jcdickinson/refdocs/internal/render"
	"github.com/jcdickinson/refdocs/internal/tools"
	"github.com/jcdickinson/refdocs/internal/typegraph"
)

// Driver runs the documentation pipelines for one configuration.
type Driver struct {
	Config *config.Config
	Orch   *Orchestrator
	DocsRS *tools.DocsRS
}

// New probes the installed tools once and returns a driver bound to the
// snapshot.
func New(ctx context.Context, cfg *config.Config, runner tools.Runner) *Driver {
	caps := tools.Probe(ctx, runner, cfg.CIEnv)
	return &Driver{
		Config: cfg,
		Orch:   &Orchestrator{Config: cfg, Caps: caps, Runner: runner},
		DocsRS: tools.NewDocsRS(),
	}
}

// Caps returns the capability snapshot taken when the driver was created.
func (d *Driver) Caps() tools.Capabilities {
	return d.Orch.Caps
}

func (d *Driver) logger() *slog.Logger {
	return d.Orch.logger()
}

func (d *Driver) crate() tools.Crate {
	return tools.Crate{
		Dir:       d.Config.Rustdoc.CrateDir,
		Name:      d.Config.Rustdoc.CrateName,
		JSONName:  d.Config.Rustdoc.JSONName,
		Toolchain: d.Config.Rustdoc.Toolchain,
	}
}

// requireCargo applies the CI rule: a missing toolchain skips the run inside
// CI and fails it everywhere else.
func (d *Driver) requireCargo(r *Report) error {
	caps := d.Caps()
	if caps.Cargo {
		return nil
	}
	if caps.CI {
		r.Skipped = true
		d.logger().Warn("cargo not available in CI, skipping; pre-generated docs should be committed", "run", r.Kind)
		return ErrSkippedCI
	}
	return fmt.Errorf("%w: cargo is not installed or not in PATH (https://rustup.rs/)", ErrToolUnavailable)
}

// RunProto documents every .proto file in the configured directory. A
// missing directory yields a placeholder page instead.
func (d *Driver) RunProto(ctx context.Context) (*Report, error) {
	r := &Report{Kind: "proto"}
	dir := d.Config.Proto.Dir
	out := d.Config.Proto.OutputDir

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		d.logger().Warn("proto directory not found, writing placeholder", "dir", dir, "error", ErrNoInput)
		page := render.PlaceholderPage(d.Config.Ext)
		data, err := page.Bytes()
		if err != nil {
			return r, fmt.Errorf("rendering placeholder: %w", err)
		}
		if err := writePage(out, page.FileName, data); err != nil {
			return r, err
		}
		r.Placeholder = true
		return r, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.proto"))
	if err != nil {
		return r, fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(files) == 0 {
		d.logger().Warn("no .proto files found", "dir", dir, "error", ErrNoInput)
		return r, nil
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		name, data, source, err := d.Orch.ProtoPage(ctx, file)
		if err != nil {
			d.logger().Error("failed to document proto file", "file", file, "error", err)
			r.add(Outcome{Input: file, Err: err})
			continue
		}
		if err := writePage(out, name, data); err != nil {
			return r, err
		}
		d.logger().Info("generated proto documentation", "file", file, "page", name, "source", source)
		r.add(Outcome{Input: file, Source: source, Pages: []string{name}})
	}
	return r, nil
}

// RustdocRequest selects where type graphs come from. With no explicit
// inputs the configured crate targets are emitted with cargo.
type RustdocRequest struct {
	// JSON lists pre-emitted type graphs (.json or .json.zst).
	JSON []string
	// Crates lists published crates to fetch from docs.rs, as name[@version].
	Crates []string
	// FromArchive renders the configured targets from their last archived
	// graphs instead of running cargo.
	FromArchive bool
}

// RunRustdoc renders module pages for every requested type graph.
func (d *Driver) RunRustdoc(ctx context.Context, req RustdocRequest) (*Report, error) {
	r := &Report{Kind: "rustdoc"}

	var graphs []Graph
	switch {
	case len(req.JSON) > 0 || len(req.Crates) > 0:
		for _, p := range req.JSON {
			graphs = append(graphs, Graph{Label: p, Path: p, Mode: d.modeForFile(p)})
		}
		for _, spec := range req.Crates {
			name, version := tools.ParseCrateSpec(spec)
			data, err := d.DocsRS.Fetch(ctx, name, version)
			if err != nil {
				d.logger().Error("failed to fetch type graph", "crate", spec, "error", err)
				r.add(Outcome{Input: spec, Err: err})
				continue
			}
			graphs = append(graphs, Graph{Label: spec, Data: data, CrateName: name, Subdir: name})
		}
	case req.FromArchive:
		for _, t := range d.Config.Rustdoc.Targets {
			data, err := d.unarchive(t)
			if err != nil {
				d.logger().Error("failed to read archived type graph", "target", t.String(), "error", err)
				r.add(Outcome{Input: t.String(), Err: err})
				continue
			}
			graphs = append(graphs, Graph{Label: t.String(), Data: data, Mode: modeOf(t)})
		}
	default:
		if err := d.requireCargo(r); err != nil {
			return r, err
		}
		for _, t := range d.Config.Rustdoc.Targets {
			if err := ctx.Err(); err != nil {
				return r, err
			}
			p, err := tools.EmitRustdoc(ctx, d.Orch.Runner, d.crate(), t)
			if err != nil {
				d.logger().Error("failed to emit type graph", "target", t.String(), "error", err)
				r.add(Outcome{Input: t.String(), Err: err})
				continue
			}
			if d.Config.Rustdoc.Archive {
				d.archive(t, p)
			}
			graphs = append(graphs, Graph{Label: t.String(), Path: p, Mode: modeOf(t)})
		}
	}

	written := map[string]string{}
	for _, g := range graphs {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		names, dangling, err := d.renderGraph(g, written)
		if err != nil {
			var werr *WriteError
			if errors.As(err, &werr) {
				return r, err
			}
			d.logger().Error("failed to document type graph", "input", g.Label, "error", err)
			r.add(Outcome{Input: g.Label, Err: err})
			continue
		}
		r.Dangling += dangling
		r.add(Outcome{Input: g.Label, Source: "rustdoc", Pages: names})
	}
	return r, nil
}

// renderGraph renders every page of g before writing any of them. written
// maps page names already produced in this run to the input that produced
// them; a later input replaces the page.
func (d *Driver) renderGraph(g Graph, written map[string]string) ([]string, int, error) {
	res, err := d.Orch.RustdocPages(g)
	if err != nil {
		return nil, 0, err
	}

	data := make([][]byte, len(res.Pages))
	for i, page := range res.Pages {
		if data[i], err = page.Bytes(); err != nil {
			return nil, 0, fmt.Errorf("rendering %s: %w", page.FileName, err)
		}
	}

	names := make([]string, 0, len(res.Pages))
	for i, page := range res.Pages {
		if prev, ok := written[page.FileName]; ok {
			d.logger().Info("page replaced by later input", "page", page.FileName, "previous", prev, "input", g.Label)
		}
		if err := writePage(d.Config.Rustdoc.OutputDir, page.FileName, data[i]); err != nil {
			return nil, 0, err
		}
		written[page.FileName] = g.Label
		names = append(names, page.FileName)
	}
	d.logger().Info("generated rustdoc pages", "input", g.Label, "pages", len(names))
	return names, res.Dangling, nil
}

// RunHTML builds the crate's standard rustdoc HTML into the public directory.
func (d *Driver) RunHTML(ctx context.Context) (*Report, error) {
	r := &Report{Kind: "html"}
	if err := d.requireCargo(r); err != nil {
		return r, err
	}
	out := d.Config.HTML.OutputDir
	if err := tools.RustdocHTML(ctx, d.Orch.Runner, d.crate(), out); err != nil {
		d.logger().Error("failed to build rustdoc HTML", "error", err)
		r.add(Outcome{Input: d.Config.Rustdoc.CrateDir, Err: err})
		return r, nil
	}
	d.logger().Info("generated rustdoc HTML", "dir", out)
	r.add(Outcome{Input: d.Config.Rustdoc.CrateDir, Source: "cargo doc", Pages: []string{out}})
	return r, nil
}

func (d *Driver) refName(t config.Target) string {
	return d.Config.Rustdoc.CrateName + "/" + t.String()
}

// archive stores an emitted graph in the CAS. Failures are logged only.
func (d *Driver) archive(t config.Target, p string) {
	data, err := os.ReadFile(p)
	if err != nil {
		d.logger().Warn("failed to archive type graph", "target", t.String(), "error", err)
		return
	}
	hash, err := cas.Write(data)
	if err == nil {
		err = cas.Tag(d.refName(t), hash)
	}
	if err != nil {
		d.logger().Warn("failed to archive type graph", "target", t.String(), "error", err)
		return
	}
	d.logger().Info("archived type graph", "target", t.String(), "hash", hash)
}

func (d *Driver) unarchive(t config.Target) ([]byte, error) {
	hash, err := cas.Resolve(d.refName(t))
	if err != nil {
		return nil, err
	}
	return cas.Read(hash)
}

func modeOf(t config.Target) typegraph.Mode {
	if t.Kind == "bin" {
		return typegraph.Executable
	}
	return typegraph.Library
}

// modeForFile treats a pre-emitted graph as executable when its file stem
// names a configured binary target, either as rustdoc writes it or as
// EmitRustdoc moves it. The library's own names always win, since a binary
// named after the crate shares rustdoc's output name.
func (d *Driver) modeForFile(p string) typegraph.Mode {
	stem := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(p), ".zst"), ".json")
	jsonName := d.Config.Rustdoc.JSONName
	if stem == jsonName || stem == jsonName+"_lib" {
		return typegraph.Library
	}
	for _, t := range d.Config.Rustdoc.Targets {
		if t.Kind != "bin" {
			continue
		}
		s := tools.TargetStem(t)
		if stem == s || stem == jsonName+"_"+s {
			return typegraph.Executable
		}
	}
	return typegraph.Library
}

// writePage writes data to dir/name, creating parent directories.
func writePage(dir, name string, data []byte) error {
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return &WriteError{Path: p, Err: err}
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return &WriteError{Path: p, Err: err}
	}
	return nil
}
