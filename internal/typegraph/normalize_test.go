package typegraph

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func mustParse(t *testing.T, data string) *Index {
	t.Helper()
	idx, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return idx
}

const sampleIndex = `{
  "root": 0,
  "format_version": 39,
  "index": {
    "0": {"id": 0, "name": "engine", "docs": "# Engine\nTop level.", "inner": {"module": {"is_crate": true, "items": [1, 2, 3, 4, 5, 6, 7, 8, 99]}}},
    "1": {"id": 1, "name": "net", "docs": null, "inner": {"module": {"is_crate": false, "items": [10, 11]}}},
    "2": {"id": 2, "name": "empty", "docs": null, "inner": {"module": {"is_crate": false, "items": []}}},
    "3": {"id": 3, "name": "Config", "docs": "Settings.", "inner": {"struct": {"kind": {"plain": {"fields": [20, 21], "has_stripped_fields": false}}, "generics": {}, "impls": []}}},
    "4": {"id": 4, "name": "State", "docs": null, "inner": {"enum": {"variants": [30, 31]}}},
    "5": {"id": 5, "name": "start", "docs": null, "inner": {"function": {"sig": {"inputs": [["cfg", {"borrowed_ref": {"lifetime": null, "is_mutable": false, "type": {"resolved_path": {"name": "Config", "id": 3}}}}], ["port", {"primitive": "u16"}]], "output": {"resolved_path": {"name": "Result", "args": {"angle_bracketed": {"args": [{"type": {"tuple": []}}]}}}}}}}},
    "6": {"id": 6, "name": "Handler", "docs": null, "inner": {"trait": {"items": [40]}}},
    "7": {"id": 7, "name": "MAX", "docs": null, "inner": {"constant": {"type": {"primitive": "usize"}, "const": {"expr": "64", "value": "64", "is_literal": true}}}},
    "8": {"id": 8, "name": "Id", "docs": null, "inner": {"type_alias": {"type": {"primitive": "u64"}, "generics": {}}}},
    "10": {"id": 10, "name": "Pair", "docs": null, "inner": {"struct": {"kind": {"tuple": [22, null]}}}},
    "11": {"id": 11, "name": "back", "docs": null, "inner": {"module": {"is_crate": false, "items": [0, 12]}}},
    "12": {"id": 12, "name": "noop", "docs": null, "inner": {"function": {"sig": {"inputs": [], "output": null}}}},
    "20": {"id": 20, "name": "name", "docs": null, "inner": {"struct_field": {"resolved_path": {"name": "String"}}}},
    "21": {"id": 21, "name": "odd", "docs": null, "inner": {"variant": {}}},
    "22": {"id": 22, "name": "0", "docs": null, "inner": {"struct_field": {"primitive": "u8"}}},
    "30": {"id": 30, "name": "Idle", "docs": null, "inner": {"variant": {"kind": "plain"}}},
    "31": {"id": 31, "name": "Busy", "docs": null, "inner": {"variant": {"kind": "plain"}}},
    "40": {"id": 40, "name": "handle", "docs": null, "inner": {"function": {"sig": {"inputs": [], "output": null}}}}
  }
}`

func TestNormalize(t *testing.T) {
	t.Parallel()
	tree, err := Normalize(mustParse(t, sampleIndex), Target{Mode: Library})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	var names []string
	for _, m := range tree.Modules {
		names = append(names, strings.Join(m.Path, "::"))
	}
	want := []string{"engine", "engine::net", "engine::net::back"}
	if !slices.Equal(names, want) {
		t.Fatalf("got modules %q, want %q", names, want)
	}

	root := tree.Root
	if !root.IsRoot || root.ID != "0" {
		t.Errorf("got root %+v", root)
	}
	if got := len(root.Submodules); got != 2 {
		t.Errorf("got %d submodules, want 2 (empty ones still count as children)", got)
	}

	if len(root.Structs) != 1 || len(root.Structs[0].Fields) != 2 {
		t.Fatalf("got structs %+v", root.Structs)
	}
	if got := Format(root.Structs[0].Fields[0].Type); got != "String" {
		t.Errorf("got %q, want %q", got, "String")
	}
	if root.Structs[0].Fields[1].Type != nil {
		t.Errorf("non-field member should have no type, got %#v", root.Structs[0].Fields[1].Type)
	}

	if got := root.Enums[0].Variants; !slices.Equal(got, []string{"Idle", "Busy"}) {
		t.Errorf("got variants %q", got)
	}

	fn := root.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0].Name != "cfg" || Format(fn.Params[0].Type) != "&Config" {
		t.Errorf("got params %+v", fn.Params)
	}
	if got := Format(fn.Output); got != "Result<()>" {
		t.Errorf("got %q, want %q", got, "Result<()>")
	}

	if got := root.Traits[0].Items; !slices.Equal(got, []string{"handle"}) {
		t.Errorf("got trait items %q", got)
	}
	if c := root.Constants[0]; c.Expr != "64" || Format(c.Type) != "usize" {
		t.Errorf("got constant %+v", c)
	}
	if a := root.TypeAliases[0]; Format(a.Type) != "u64" {
		t.Errorf("got alias %+v", a)
	}

	if !slices.Equal(tree.Dangling, []ID{"99"}) {
		t.Errorf("got dangling %q, want [99]", tree.Dangling)
	}
}

func TestNormalizeTupleStructSkipsStripped(t *testing.T) {
	t.Parallel()
	tree, err := Normalize(mustParse(t, sampleIndex), Target{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	net := tree.Modules[1]
	if len(net.Structs) != 1 {
		t.Fatalf("got structs %+v", net.Structs)
	}
	fields := net.Structs[0].Fields
	if len(fields) != 1 || fields[0].Name != "0" || Format(fields[0].Type) != "u8" {
		t.Errorf("got fields %+v", fields)
	}
}

func TestNormalizeCycleTerminates(t *testing.T) {
	t.Parallel()
	data := `{"root": "a", "index": {
		"a": {"id": "a", "name": "a", "inner": {"module": {"is_crate": true, "items": ["b"]}}},
		"b": {"id": "b", "name": "b", "inner": {"module": {"items": ["a", "c"]}}},
		"c": {"id": "c", "name": "c", "inner": {"module": {"items": ["b"]}}}
	}}`
	tree, err := Normalize(mustParse(t, data), Target{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := len(tree.Modules); got != 3 {
		t.Errorf("got %d modules, want 3", got)
	}
}

func TestNormalizeSelfReferenceTerminates(t *testing.T) {
	t.Parallel()
	data := `{"root": 1, "index": {
		"1": {"id": 1, "name": "me", "inner": {"module": {"is_crate": true, "items": [1]}}}
	}}`
	tree, err := Normalize(mustParse(t, data), Target{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := len(tree.Modules); got != 1 {
		t.Errorf("got %d modules, want 1", got)
	}
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want error
	}{
		{"missing_root", `{"root": 7, "index": {}}`, ErrMissingRoot},
		{"root_not_module", `{"root": 1, "index": {"1": {"id": 1, "name": "S", "inner": {"struct": {}}}}}`, ErrRootNotModule},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(mustParse(t, tt.json), Target{})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeSkipsMalformedItems(t *testing.T) {
	t.Parallel()
	data := `{
  "root": 0,
  "index": {
    "0": {"id": 0, "name": "engine", "inner": {"module": {"is_crate": true, "items": [1, 2, 3]}}},
    "1": {"id": 1, "name": "start", "docs": "Starts.", "inner": {"function": {"sig": {"inputs": [], "output": null}}}},
    "2": {"id": 2, "name": "drifted", "docs": {"text": "new shape"}, "inner": {"function": {"sig": {"inputs": [], "output": null}}}},
    "3": {"id": {"krate": 0, "index": 3}, "name": "weird", "inner": {"constant": {}}}
  },
  "paths": {"1": {"crate_id": 0, "path": ["engine", "start"], "kind": "function"}, "9": {"path": "bad"}}
}`
	idx := mustParse(t, data)
	tree, err := Normalize(idx, Target{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	var fns []string
	for _, f := range tree.Root.Functions {
		fns = append(fns, f.Name)
	}
	if !slices.Equal(fns, []string{"start"}) {
		t.Errorf("got functions %q, want %q", fns, []string{"start"})
	}
	if len(tree.Root.Constants) != 0 {
		t.Errorf("got %d constants, want 0", len(tree.Root.Constants))
	}
	if !slices.Equal(tree.Dangling, []ID{"2", "3"}) {
		t.Errorf("got dangling %q, want %q", tree.Dangling, []ID{"2", "3"})
	}
	if _, ok := tree.ResolveLink("9"); ok {
		t.Error("malformed path summary must not resolve")
	}
}

func TestNormalizeEmptyRootIsNotAnError(t *testing.T) {
	t.Parallel()
	data := `{"root": 0, "index": {"0": {"id": 0, "name": "bin", "inner": {"module": {"is_crate": true, "items": []}}}}}`
	tree, err := Normalize(mustParse(t, data), Target{Mode: Executable})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !tree.Empty() {
		t.Error("expected an empty tree")
	}
	if tree.Mode != Executable {
		t.Errorf("got mode %v, want %v", tree.Mode, Executable)
	}
	if len(tree.Modules) != 1 {
		t.Errorf("root page must still be produced, got %d modules", len(tree.Modules))
	}
}

func TestNormalizeExplicitRoot(t *testing.T) {
	t.Parallel()
	tree, err := Normalize(mustParse(t, sampleIndex), Target{Root: "1"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tree.Root.Name != "net" {
		t.Errorf("got root %q, want %q", tree.Root.Name, "net")
	}
}
