package typegraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// ID identifies an item in a type-graph index. Older rustdoc formats use
// strings like "0:12:345", newer ones plain integers; both decode to ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding item id %s: %w", b, err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding item id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Index is the top-level structure of rustdoc JSON output. Items and path
// summaries stay raw until looked up, so one malformed entry only loses
// that entry.
type Index struct {
	Root           ID                         `json:"root"`
	CrateVersion   *string                    `json:"crate_version"`
	Items          map[ID]json.RawMessage     `json:"index"`
	Paths          map[ID]json.RawMessage     `json:"paths"`
	ExternalCrates map[string]json.RawMessage `json:"external_crates"`
	FormatVersion  int                        `json:"format_version"`

	mu      sync.Mutex
	decoded map[ID]*Item
}

// Summary gives the canonical path and kind of an item, including items
// that live in other crates.
type Summary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Item is a single entry in the index. Inner carries exactly one
// discriminant key ({"module": {...}}, {"struct": {...}}, ...).
type Item struct {
	ID      ID              `json:"id"`
	CrateID int             `json:"crate_id"`
	Name    *string         `json:"name"`
	Docs    *string         `json:"docs"`
	Links   map[string]ID   `json:"links"` // markdown link text -> item id
	Inner   json.RawMessage `json:"inner"`
}

func (it *Item) name() string {
	if it.Name == nil {
		return ""
	}
	return *it.Name
}

func (it *Item) docs() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// kindData extracts the payload for kind from Inner, or nil when Inner
// carries a different discriminant.
func (it *Item) kindData(kind string) json.RawMessage {
	if len(it.Inner) == 0 {
		return nil
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(it.Inner, &outer); err != nil {
		return nil
	}
	data, ok := outer[kind]
	if !ok {
		return nil
	}
	return data
}

// Lookup returns the item for id. Items that are absent or fail to decode
// both report false; decode failures are logged once.
func (idx *Index) Lookup(id ID) (*Item, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if item, ok := idx.decoded[id]; ok {
		return item, item != nil
	}
	raw, ok := idx.Items[id]
	if !ok {
		return nil, false
	}
	if idx.decoded == nil {
		idx.decoded = map[ID]*Item{}
	}
	item := &Item{}
	if err := json.Unmarshal(raw, item); err != nil {
		slog.Warn("skipping malformed item", "id", id, "error", err)
		item = nil
	}
	idx.decoded[id] = item
	return item, item != nil
}

func (idx *Index) summary(id ID) (Summary, bool) {
	raw, ok := idx.Paths[id]
	if !ok {
		return Summary{}, false
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Debug("skipping malformed path summary", "id", id, "error", err)
		return Summary{}, false
	}
	return s, true
}

func (idx *Index) externalCrate(key string) (ExternalCrate, bool) {
	raw, ok := idx.ExternalCrates[key]
	if !ok {
		return ExternalCrate{}, false
	}
	var c ExternalCrate
	if err := json.Unmarshal(raw, &c); err != nil {
		slog.Debug("skipping malformed external crate", "crate", key, "error", err)
		return ExternalCrate{}, false
	}
	return c, true
}
