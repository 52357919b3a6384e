package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DocsRS downloads published type graphs from docs.rs.
type DocsRS struct {
	Client  *http.Client
	BaseURL string
}

func NewDocsRS() *DocsRS {
	return &DocsRS{
		Client:  &http.Client{Timeout: 60 * time.Second},
		BaseURL: "https://docs.rs",
	}
}

// ParseCrateSpec splits "name@version" into its parts. The version defaults
// to "latest".
func ParseCrateSpec(spec string) (name, version string) {
	name, version, _ = strings.Cut(spec, "@")
	if version == "" {
		version = "latest"
	}
	return name, version
}

// Fetch downloads and decompresses the rustdoc JSON for a crate version.
// The version "latest" is resolved by docs.rs via redirect.
func (d *DocsRS) Fetch(ctx context.Context, name, version string) ([]byte, error) {
	if version == "" {
		version = "latest"
	}

	url := fmt.Sprintf("%s/crate/%s/%s/json", strings.TrimSuffix(d.BaseURL, "/"), name, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "refdocs/0.1.0")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("docs.rs returned %d for %s/%s: %s", resp.StatusCode, name, version, string(body))
	}

	// docs.rs returns zstd-compressed JSON
	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing rustdoc JSON: %w", err)
	}

	return data, nil
}
