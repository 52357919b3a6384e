package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProtocDoc renders file with protoc-gen-doc's markdown template and returns
// the generated document. Output goes to a temporary directory removed before
// returning.
func ProtocDoc(ctx context.Context, r Runner, file string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "refdocs-protoc-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	base := filepath.Base(file)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".md"

	out, err := r.Run(ctx, "", "protoc",
		"--doc_out="+tmp,
		"--doc_opt=markdown,"+name,
		"-I", filepath.Dir(file),
		file,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: protoc on %s: %v: %s", ErrFailed, base, err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(filepath.Join(tmp, name))
	if err != nil {
		return nil, fmt.Errorf("%w: protoc wrote no output for %s: %v", ErrFailed, base, err)
	}
	return data, nil
}
