package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/jcdickinson/refdocs/internal/config"
	"github.com/jcdickinson/refdocs/internal/markdown"
	"github.com/jcdickinson/refdocs/internal/proto"
	"github.com/jcdickinson/refdocs/internal/render"
	"github.com/jcdickinson/refdocs/internal/tools"
	"github.com/jcdickinson/refdocs/internal/typegraph"
)

// Orchestrator turns one input into pages, delegating to external tools when
// the capability snapshot allows and falling back to the built-in parser
// otherwise.
type Orchestrator struct {
	Config *config.Config
	Caps   tools.Capabilities
	Runner tools.Runner
	Logger *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ProtoPage documents one .proto file. It returns the page file name, its
// contents and the source that produced them.
func (o *Orchestrator) ProtoPage(ctx context.Context, file string) (string, []byte, string, error) {
	fileName := render.ProtoFileName(file, o.Config.Ext)

	if o.Config.Proto.UseTool && o.Caps.ProtoTool() {
		data, err := o.protocPage(ctx, file)
		if err == nil {
			return fileName, data, "protoc-gen-doc", nil
		}
		o.logger().Warn("protoc-gen-doc failed, using built-in parser", "file", file, "error", err)
	}

	f, err := os.Open(file)
	if err != nil {
		return "", nil, "", fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	schema, err := proto.ParseReader(f)
	if err != nil {
		return "", nil, "", fmt.Errorf("parsing %s: %w", file, err)
	}

	if o.Config.Proto.CrossCheck {
		o.crossCheck(ctx, file, schema)
	}

	data, err := render.ProtoPage(file, schema, o.Config.Ext).Bytes()
	if err != nil {
		return "", nil, "", fmt.Errorf("rendering %s: %w", file, err)
	}
	return fileName, data, "parser", nil
}

func (o *Orchestrator) protocPage(ctx context.Context, file string) ([]byte, error) {
	out, err := tools.ProtocDoc(ctx, o.Runner, file)
	if err != nil {
		return nil, err
	}
	doc, err := markdown.EnsureFrontMatter(string(out), render.ProtoToolFrontMatter(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	return []byte(doc), nil
}

// crossCheck logs where the compiled descriptor disagrees with the parsed
// schema. It never fails the file.
func (o *Orchestrator) crossCheck(ctx context.Context, file string, schema *proto.Schema) {
	findings, err := proto.CrossCheck(ctx, filepath.Dir(file), filepath.Base(file), schema)
	if err != nil {
		o.logger().Warn("cross-check skipped", "file", file, "error", err)
		return
	}
	for _, f := range findings {
		o.logger().Warn("cross-check", "file", file, "element", f.Element, "finding", f.Message)
	}
}

// Graph is one type-graph input. Exactly one of Path and Data is set.
type Graph struct {
	// Label identifies the input in logs and reports.
	Label string
	Path  string
	Data  []byte
	Mode  typegraph.Mode
	// CrateName overrides the configured crate name in titles and paths.
	CrateName string
	// Subdir places the pages below the output directory, keeping a
	// dependency's crate page apart from the main crate's.
	Subdir string
}

// GraphResult is the pages rendered from one type graph.
type GraphResult struct {
	Pages    []render.Page
	Dangling int
}

// RustdocPages loads, normalizes and renders one type graph.
func (o *Orchestrator) RustdocPages(g Graph) (*GraphResult, error) {
	var (
		idx *typegraph.Index
		err error
	)
	if g.Path != "" {
		idx, err = typegraph.Load(g.Path)
	} else {
		idx, err = typegraph.Parse(g.Data)
	}
	if err != nil {
		return nil, err
	}

	tree, err := typegraph.Normalize(idx, typegraph.Target{Mode: g.Mode})
	if err != nil {
		return nil, err
	}
	if tree.Empty() {
		o.logger().Warn("root module has no documented items", "input", g.Label)
	}
	if n := len(tree.Dangling); n > 0 {
		o.logger().Debug("dangling references skipped", "input", g.Label, "count", n)
	}

	crate := g.CrateName
	if crate == "" {
		crate = o.Config.Rustdoc.CrateName
	}
	linkBase := o.Config.Rustdoc.LinkBase
	if linkBase != "" && g.Subdir != "" {
		linkBase = path.Join(linkBase, g.Subdir)
	}
	pages := render.ModulePages(tree, render.ModuleOptions{
		CrateName:    crate,
		RuntimeTitle: o.Config.Rustdoc.RuntimeTitle,
		Ext:          o.Config.Ext,
		LinkBase:     linkBase,
		Formatter:    &typegraph.Formatter{Logger: o.logger()},
	})
	if g.Subdir != "" {
		for i := range pages {
			pages[i].FileName = path.Join(g.Subdir, pages[i].FileName)
		}
	}
	return &GraphResult{Pages: pages, Dangling: len(tree.Dangling)}, nil
}
