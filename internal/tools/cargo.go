package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcdickinson/refdocs/internal/config"
)

// Crate describes the cargo package being documented.
type Crate struct {
	Dir string
	// Name is the public crate name used in output paths.
	Name string
	// JSONName is the library's file stem under target/doc.
	JSONName  string
	Toolchain string
}

func (c Crate) docDir() string {
	return filepath.Join(c.Dir, "target", "doc")
}

// JSONPath is where rustdoc writes the type graph for target.
func (c Crate) JSONPath(target config.Target) string {
	stem := c.JSONName
	if target.Kind == "bin" {
		stem = TargetStem(target)
	}
	return filepath.Join(c.docDir(), stem+".json")
}

// TargetJSONPath is where EmitRustdoc keeps the type graph for target. Lib
// and bin graphs share rustdoc's output name when the binary is named after
// the crate, so each is moved aside as <json_name>_<target>.json.
func (c Crate) TargetJSONPath(target config.Target) string {
	return filepath.Join(c.docDir(), c.JSONName+"_"+TargetStem(target)+".json")
}

// TargetStem is the file-name form of target: "lib", or the binary name
// with '-' replaced by '_'.
func TargetStem(target config.Target) string {
	if target.Kind == "bin" {
		return strings.ReplaceAll(target.Name, "-", "_")
	}
	return "lib"
}

func (c Crate) cargoArgs(args ...string) []string {
	if c.Toolchain == "" {
		return args
	}
	return append([]string{c.Toolchain}, args...)
}

// EmitRustdoc runs rustdoc's JSON backend for one crate target and returns
// the path of the emitted type graph, moved to TargetJSONPath so the next
// target cannot overwrite it.
func EmitRustdoc(ctx context.Context, r Runner, c Crate, target config.Target) (string, error) {
	args := []string{"rustdoc"}
	if target.Kind == "bin" {
		args = append(args, "--bin", target.Name)
	} else {
		args = append(args, "--lib")
	}
	args = append(args, "--",
		"--output-format", "json",
		"-Z", "unstable-options",
		"--document-private-items",
	)

	slog.Info("emitting type graph", "crate", c.Name, "target", target.String())
	if out, err := r.Run(ctx, c.Dir, "cargo", c.cargoArgs(args...)...); err != nil {
		return "", fmt.Errorf("%w: cargo rustdoc %s: %v: %s", ErrFailed, target, err, strings.TrimSpace(string(out)))
	}

	p := c.JSONPath(target)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: type graph not found at %s", ErrFailed, p)
	}
	dest := c.TargetJSONPath(target)
	if err := os.Rename(p, dest); err != nil {
		return "", fmt.Errorf("%w: moving type graph: %v", ErrFailed, err)
	}
	return dest, nil
}

// RustdocHTML builds the crate's standard HTML docs and copies them into
// outDir, replacing its previous contents. The crate's own folder is renamed
// to c.Name so URLs stay stable when the package and crate names differ.
func RustdocHTML(ctx context.Context, r Runner, c Crate, outDir string) error {
	slog.Info("building rustdoc HTML", "crate", c.Name)
	if out, err := r.Run(ctx, c.Dir, "cargo", "doc", "--no-deps"); err != nil {
		return fmt.Errorf("%w: cargo doc: %v: %s", ErrFailed, err, strings.TrimSpace(string(out)))
	}

	src := c.docDir()
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w: rustdoc output not found at %s", ErrFailed, src)
	}
	folder := ""
	for _, e := range entries {
		if e.IsDir() && (e.Name() == c.Name || e.Name() == c.JSONName) {
			folder = e.Name()
			break
		}
	}
	if folder == "" {
		return fmt.Errorf("%w: no documentation folder for %s in %s", ErrFailed, c.Name, src)
	}

	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("cleaning %s: %w", outDir, err)
	}
	if err := copyDir(src, outDir); err != nil {
		return fmt.Errorf("copying rustdoc HTML: %w", err)
	}
	if folder != c.Name {
		slog.Debug("renaming crate folder", "from", folder, "to", c.Name)
		if err := os.Rename(filepath.Join(outDir, folder), filepath.Join(outDir, c.Name)); err != nil {
			return fmt.Errorf("renaming crate folder: %w", err)
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
