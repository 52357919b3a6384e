package typegraph

import (
	"encoding/json"
	"testing"
)

func TestDecodeTypeFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want string
	}{
		{"primitive", `{"primitive":"u32"}`, "u32"},
		{"generic", `{"generic":"T"}`, "T"},
		{"generic_object", `{"generic":{"name":"U"}}`, "U"},
		{"wrapped", `{"type":{"primitive":"bool"}}`, "bool"},
		{"resolved_path_name", `{"resolved_path":{"name":"String","id":3,"args":null}}`, "String"},
		{"resolved_path_string_path", `{"resolved_path":{"path":"Vec","id":3,"args":{"angle_bracketed":{"args":[{"type":{"primitive":"u8"}}],"constraints":[]}}}}`, "Vec<u8>"},
		{"resolved_path_segments", `{"resolved_path":{"path":{"segments":[{"name":"std"},{"name":"HashMap"}]}}}`, "HashMap"},
		{"resolved_path_array_path", `{"resolved_path":{"path":["core","Option"]}}`, "Option"},
		{
			"nested_generic",
			`{"resolved_path":{"name":"Result","args":{"angle_bracketed":{"args":[{"type":{"resolved_path":{"name":"Vec","args":{"angle_bracketed":{"args":[{"type":{"generic":"T"}}]}}}}},{"type":{"resolved_path":{"name":"Error"}}}]}}}}`,
			"Result<Vec<T>, Error>",
		},
		{"lifetime_arg", `{"resolved_path":{"name":"Cow","args":{"angle_bracketed":{"args":[{"lifetime":"'a"},{"type":{"primitive":"str"}}]}}}}`, "Cow<'a, str>"},
		{"const_arg", `{"resolved_path":{"name":"Buf","args":{"angle_bracketed":{"args":[{"const":{"expr":"16","value":null,"is_literal":true}}]}}}}`, "Buf<16>"},
		{"infer_arg", `{"resolved_path":{"name":"Vec","args":{"angle_bracketed":{"args":["infer"]}}}}`, "Vec<_>"},
		{"binding_equality", `{"resolved_path":{"name":"Iterator","args":{"angle_bracketed":{"args":[],"constraints":[{"name":"Item","args":null,"binding":{"equality":{"type":{"primitive":"u8"}}}}]}}}}`, "Iterator<Item = u8>"},
		{"binding_constraint", `{"resolved_path":{"name":"IntoIterator","args":{"angle_bracketed":{"args":[],"bindings":[{"name":"Item","binding":{"constraint":[{"trait_bound":{"trait":{"name":"Clone"}}}]}}]}}}}`, "IntoIterator<Item: Clone>"},
		{"parenthesized", `{"resolved_path":{"name":"Fn","args":{"parenthesized":{"inputs":[{"primitive":"u8"}],"output":{"primitive":"bool"}}}}}`, "Fn(u8) -> bool"},
		{"qualified_path", `{"qualified_path":{"name":"Item","self_type":{"generic":"I"},"trait":{"name":"Iterator"}}}`, "Item"},
		{"borrowed_ref", `{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"primitive":"str"}}}`, "&str"},
		{"borrowed_ref_mut_lifetime", `{"borrowed_ref":{"lifetime":"a","mutable":true,"type":{"generic":"T"}}}`, "&'a mut T"},
		{"raw_pointer_const", `{"raw_pointer":{"is_mutable":false,"type":{"primitive":"u8"}}}`, "*const u8"},
		{"raw_pointer_mut", `{"raw_pointer":{"mutable":true,"type":{"primitive":"u8"}}}`, "*mut u8"},
		{"function_pointer", `{"function_pointer":{"sig":{"inputs":[["x",{"primitive":"u32"}]],"output":{"primitive":"bool"}}}}`, "fn(u32) -> bool"},
		{"fn_pointer_bare_inputs", `{"fn_pointer":{"inputs":[{"primitive":"u8"},{"primitive":"u16"}],"output":null}}`, "fn(u8, u16)"},
		{"tuple", `{"tuple":[{"primitive":"u32"},{"primitive":"bool"}]}`, "(u32, bool)"},
		{"unit", `{"tuple":[]}`, "()"},
		{"tuple_single_object", `{"tuple":{"primitive":"u8"}}`, "(u8)"},
		{"slice", `{"slice":{"primitive":"u8"}}`, "[u8]"},
		{"array", `{"array":{"type":{"primitive":"u8"},"len":"32"}}`, "[u8; 32]"},
		{"array_numeric_len", `{"array":{"type":{"primitive":"u8"},"len":4}}`, "[u8; 4]"},
		{"array_missing_len", `{"array":{"type":{"primitive":"u8"}}}`, "[u8; ?]"},
		{"dyn_trait", `{"dyn_trait":{"traits":[{"trait":{"name":"Debug"}},{"trait":{"name":"Send"}}],"lifetime":null}}`, "dyn Debug + Send"},
		{"dyn_trait_lifetime", `{"dyn_trait":{"traits":[{"trait":{"name":"Any"}}],"lifetime":"'static"}}`, "dyn Any + 'static"},
		{"impl_trait", `{"impl_trait":[{"trait_bound":{"trait":{"name":"Iterator"}}}]}`, "impl Iterator"},
		{"infer", `{"infer":null}`, "_"},
		{"unknown_key", `{"pat":{"type":{"primitive":"u8"}}}`, UnknownType},
		{"empty_object", `{}`, UnknownType},
		{"not_an_object", `[1,2]`, UnknownType},
		{"bare_string", `"u8"`, UnknownType},
		{"empty_primitive", `{"primitive":""}`, UnknownType},
		{"ref_missing_inner", `{"borrowed_ref":{"lifetime":null,"is_mutable":false}}`, "&" + UnknownType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Format(DecodeType(json.RawMessage(tt.json)))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeTypeAbsent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "null", "  null  "} {
		if got := DecodeType(json.RawMessage(in)); got != nil {
			t.Errorf("DecodeType(%q) = %#v, want nil", in, got)
		}
	}
}

func TestDecodeTypeUnknownKeepsRaw(t *testing.T) {
	t.Parallel()
	got := DecodeType(json.RawMessage(`{"pat":1}`))
	u, ok := got.(Unknown)
	if !ok {
		t.Fatalf("got %#v, want Unknown", got)
	}
	if u.Raw != `{"pat":1}` {
		t.Errorf("got %q, want %q", u.Raw, `{"pat":1}`)
	}
}

func TestDecodeTypeQualifiedSameVariantAsResolved(t *testing.T) {
	t.Parallel()
	resolved := DecodeType(json.RawMessage(`{"resolved_path":{"name":"Item"}}`))
	qualified := DecodeType(json.RawMessage(`{"qualified_path":{"name":"Item"}}`))
	if _, ok := resolved.(Path); !ok {
		t.Fatalf("resolved_path decoded to %T, want Path", resolved)
	}
	if _, ok := qualified.(Path); !ok {
		t.Fatalf("qualified_path decoded to %T, want Path", qualified)
	}
}

func TestDecodeInputMalformedNameKeepsType(t *testing.T) {
	t.Parallel()
	name, typ := decodeInput(json.RawMessage(`[{"ident": "x"}, {"primitive": "u8"}]`))
	if name != "" {
		t.Errorf("got name %q, want empty", name)
	}
	if got, want := Format(typ), "u8"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
