// Package cas archives emitted type graphs, zstd-compressed and addressed by
// the SHA-256 of their uncompressed bytes. Named refs point at the latest
// archived graph for a crate target.
package cas

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcdickinson/refdocs/internal/config"
	"github.com/klauspost/compress/zstd"
)

var ErrInvalidHash = errors.New("invalid CAS hash")

// Dir returns the CAS directory path.
func Dir() string {
	return config.CASDir()
}

// Path returns the sharded file path for a hash: cas/<first2>/<rest>.json.zst
func Path(hash string) string {
	return filepath.Join(Dir(), hash[:2], hash[2:]+".json.zst")
}

func refPath(name string) string {
	return filepath.Join(Dir(), "refs", strings.ReplaceAll(name, ":", "_"))
}

func validHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Write stores content in the CAS, returning its SHA-256 hash.
// If the content already exists, this is a no-op.
func Write(content []byte) (string, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	p := Path(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating CAS directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", fmt.Errorf("compressing CAS content: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing zstd writer: %w", err)
	}

	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing CAS file: %w", err)
	}

	return hash, nil
}

// Read retrieves content from the CAS by hash.
func Read(hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	f, err := os.Open(Path(hash))
	if err != nil {
		return nil, fmt.Errorf("reading CAS file %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing CAS file %s: %w", hash, err)
	}
	return data, nil
}

// Tag points the named ref at hash, replacing any previous value.
func Tag(name, hash string) error {
	if !validHash(hash) {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	p := refPath(name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating refs directory: %w", err)
	}
	if err := os.WriteFile(p, []byte(hash+"\n"), 0644); err != nil {
		return fmt.Errorf("writing ref %s: %w", name, err)
	}
	return nil
}

// Resolve returns the hash a named ref points at.
func Resolve(name string) (string, error) {
	data, err := os.ReadFile(refPath(name))
	if err != nil {
		return "", fmt.Errorf("reading ref %s: %w", name, err)
	}
	hash := strings.TrimSpace(string(data))
	if !validHash(hash) {
		return "", fmt.Errorf("ref %s: %w: %q", name, ErrInvalidHash, hash)
	}
	return hash, nil
}
