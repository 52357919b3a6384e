package typegraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Load reads a type-graph index from path. Files ending in .zst are
// zstd-compressed JSON, as served by docs.rs; anything else is plain JSON.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening type graph: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return Decode(f)
	}

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()
	return Decode(r)
}

// Decode reads a JSON type-graph index from r.
func Decode(r io.Reader) (*Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding type graph: %w", err)
	}
	return &idx, nil
}

// Parse decodes a JSON type-graph index held in memory.
func Parse(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("unmarshaling type graph: %w", err)
	}
	return &idx, nil
}
