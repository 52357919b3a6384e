package typegraph

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// DecodeType converts a rustdoc Type JSON value into a Type. JSON null (or no
// input at all) yields nil, meaning "absent". Shapes that match none of the
// known discriminants yield Unknown; decoding never fails.
func DecodeType(raw json.RawMessage) Type {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return Unknown{Raw: string(raw)}
	}

	// Some producers wrap the type: {"type": {...}}.
	if wrapped, ok := outer["type"]; ok && isObject(wrapped) {
		return DecodeType(wrapped)
	}

	if prim, ok := outer["primitive"]; ok {
		return decodeName(prim)
	}
	if g, ok := outer["generic"]; ok {
		return decodeGeneric(g)
	}
	if rp, ok := outer["resolved_path"]; ok {
		return decodePath(rp)
	}
	if qp, ok := outer["qualified_path"]; ok {
		return decodePath(qp)
	}
	if br, ok := outer["borrowed_ref"]; ok {
		return decodeBorrowedRef(br)
	}
	if rp, ok := outer["raw_pointer"]; ok {
		return decodeRawPointer(rp)
	}
	if fp, ok := outer["function_pointer"]; ok {
		return decodeFunctionPointer(fp)
	}
	if fp, ok := outer["fn_pointer"]; ok {
		return decodeFunctionPointer(fp)
	}
	if tp, ok := outer["tuple"]; ok {
		return decodeTuple(tp)
	}
	if sl, ok := outer["slice"]; ok {
		return Slice{Inner: DecodeType(sl)}
	}
	if arr, ok := outer["array"]; ok {
		return decodeArray(arr)
	}
	if dt, ok := outer["dyn_trait"]; ok {
		return decodeDynTrait(dt)
	}
	if it, ok := outer["impl_trait"]; ok {
		return decodeImplTrait(it)
	}
	if _, ok := outer["infer"]; ok {
		return Primitive{Name: "_"}
	}

	return Unknown{Raw: string(raw)}
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func decodeName(raw json.RawMessage) Type {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return Unknown{Raw: string(raw)}
	}
	return Primitive{Name: name}
}

// decodeGeneric accepts the plain string form as well as object forms seen in
// older producers ({"name": "T"} or a nested resolved_path).
func decodeGeneric(raw json.RawMessage) Type {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			return Unknown{Raw: string(raw)}
		}
		return Primitive{Name: name}
	}
	var g struct {
		Name         string          `json:"name"`
		ResolvedPath json.RawMessage `json:"resolved_path"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return Unknown{Raw: string(raw)}
	}
	if len(g.ResolvedPath) > 0 {
		return decodePath(g.ResolvedPath)
	}
	if g.Name != "" {
		return Primitive{Name: g.Name}
	}
	return Unknown{Raw: string(raw)}
}

func decodePath(raw json.RawMessage) Type {
	var p struct {
		Name string          `json:"name"`
		Path json.RawMessage `json:"path"`
		Args json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Unknown{Raw: string(raw)}
	}

	name := p.Name
	if name == "" {
		name = pathName(p.Path)
	}
	if name == "" {
		return Unknown{Raw: string(raw)}
	}

	path := Path{Name: name}
	decodeGenericArgs(p.Args, &path)
	return path
}

// pathName extracts a display name from the "path" member, which appears as
// a plain string, an array of segments, or an object with a segments array.
func pathName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(raw, &segments); err == nil {
		return lastSegment(segments)
	}

	var obj struct {
		Segments []json.RawMessage `json:"segments"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return lastSegment(obj.Segments)
	}
	return ""
}

func lastSegment(segments []json.RawMessage) string {
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	var s string
	if err := json.Unmarshal(last, &s); err == nil {
		return s
	}
	var seg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(last, &seg); err == nil {
		return seg.Name
	}
	return ""
}

func decodeGenericArgs(raw json.RawMessage, path *Path) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return
	}

	var args struct {
		AngleBracketed *struct {
			Args        []json.RawMessage `json:"args"`
			Constraints []json.RawMessage `json:"constraints"`
			Bindings    []json.RawMessage `json:"bindings"`
		} `json:"angle_bracketed"`
		Parenthesized *struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		} `json:"parenthesized"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		path.Args = append(path.Args, Unknown{Raw: string(raw)})
		return
	}

	if pa := args.Parenthesized; pa != nil {
		path.Parenthesized = true
		for _, in := range pa.Inputs {
			path.Args = append(path.Args, orUnknown(DecodeType(in), in))
		}
		path.Output = DecodeType(pa.Output)
		return
	}

	ab := args.AngleBracketed
	if ab == nil {
		return
	}
	for _, arg := range ab.Args {
		path.Args = append(path.Args, decodeGenericArg(arg))
	}
	for _, c := range append(ab.Constraints, ab.Bindings...) {
		path.Args = append(path.Args, decodeBinding(c))
	}
}

func decodeGenericArg(raw json.RawMessage) Type {
	var a map[string]json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		// Unit variants such as "infer" are encoded as bare strings.
		var s string
		if json.Unmarshal(raw, &s) == nil && s == "infer" {
			return Primitive{Name: "_"}
		}
		return Unknown{Raw: string(raw)}
	}
	if t, ok := a["type"]; ok {
		return orUnknown(DecodeType(t), t)
	}
	if lt, ok := a["lifetime"]; ok {
		return lifetimeArg(lt)
	}
	if c, ok := a["const"]; ok {
		var k struct {
			Expr  string  `json:"expr"`
			Value *string `json:"value"`
		}
		if json.Unmarshal(c, &k) == nil {
			if k.Expr != "" {
				return Primitive{Name: k.Expr}
			}
			if k.Value != nil && *k.Value != "" {
				return Primitive{Name: *k.Value}
			}
		}
		return Unknown{Raw: string(raw)}
	}
	if _, ok := a["infer"]; ok {
		return Primitive{Name: "_"}
	}
	return Unknown{Raw: string(raw)}
}

func lifetimeArg(raw json.RawMessage) Type {
	var lt string
	if err := json.Unmarshal(raw, &lt); err != nil || lt == "" {
		return Unknown{Raw: string(raw)}
	}
	return Primitive{Name: withTick(lt)}
}

// decodeBinding handles associated item constraints: {"name": "Item",
// "binding": {"equality": T}} or {"binding": {"constraint": [bounds]}}.
func decodeBinding(raw json.RawMessage) Type {
	var b struct {
		Name    string `json:"name"`
		Binding struct {
			Equality   json.RawMessage   `json:"equality"`
			Constraint []json.RawMessage `json:"constraint"`
		} `json:"binding"`
	}
	if err := json.Unmarshal(raw, &b); err != nil || b.Name == "" {
		return Unknown{Raw: string(raw)}
	}

	binding := Binding{Name: b.Name}
	if len(b.Binding.Equality) > 0 {
		binding.Equals = decodeTerm(b.Binding.Equality)
	}
	for _, bound := range b.Binding.Constraint {
		binding.Bounds = append(binding.Bounds, decodeBound(bound))
	}
	if binding.Equals == nil && len(binding.Bounds) == 0 {
		return Unknown{Raw: string(raw)}
	}
	return binding
}

// decodeTerm unwraps {"type": T} or {"constant": {...}} terms; older formats
// put the type directly in the equality slot.
func decodeTerm(raw json.RawMessage) Type {
	var term map[string]json.RawMessage
	if err := json.Unmarshal(raw, &term); err == nil {
		if c, ok := term["constant"]; ok {
			var k struct {
				Expr string `json:"expr"`
			}
			if json.Unmarshal(c, &k) == nil && k.Expr != "" {
				return Primitive{Name: k.Expr}
			}
			return Unknown{Raw: string(raw)}
		}
	}
	return orUnknown(DecodeType(raw), raw)
}

// decodeBound handles a generic bound: {"trait_bound": {"trait": path}} or
// {"outlives": "'a"}.
func decodeBound(raw json.RawMessage) Type {
	var b struct {
		TraitBound *struct {
			Trait json.RawMessage `json:"trait"`
		} `json:"trait_bound"`
		Outlives *string `json:"outlives"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return Unknown{Raw: string(raw)}
	}
	if b.TraitBound != nil {
		return decodePath(b.TraitBound.Trait)
	}
	if b.Outlives != nil && *b.Outlives != "" {
		return Primitive{Name: withTick(*b.Outlives)}
	}
	return Unknown{Raw: string(raw)}
}

func decodeBorrowedRef(raw json.RawMessage) Type {
	var r struct {
		Lifetime  *string         `json:"lifetime"`
		Mutable   bool            `json:"mutable"`
		IsMutable bool            `json:"is_mutable"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Unknown{Raw: string(raw)}
	}
	ref := Reference{
		Mutable: r.Mutable || r.IsMutable,
		Inner:   orUnknown(DecodeType(r.Type), r.Type),
	}
	if r.Lifetime != nil {
		ref.Lifetime = *r.Lifetime
	}
	return ref
}

func decodeRawPointer(raw json.RawMessage) Type {
	var p struct {
		Mutable   bool            `json:"mutable"`
		IsMutable bool            `json:"is_mutable"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Unknown{Raw: string(raw)}
	}
	return RawPointer{
		Mutable: p.Mutable || p.IsMutable,
		Inner:   orUnknown(DecodeType(p.Type), p.Type),
	}
}

// fnDecl is the inputs/output pair shared by function items and function
// pointers. It appears under "sig", under "decl" (older formats) or inline.
type fnDecl struct {
	Inputs []json.RawMessage `json:"inputs"`
	Output json.RawMessage   `json:"output"`
}

func decodeFnDecl(raw json.RawMessage) (fnDecl, bool) {
	var f struct {
		Sig  *fnDecl `json:"sig"`
		Decl *fnDecl `json:"decl"`
		fnDecl
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return fnDecl{}, false
	}
	switch {
	case f.Sig != nil:
		return *f.Sig, true
	case f.Decl != nil:
		return *f.Decl, true
	default:
		return f.fnDecl, f.Inputs != nil || f.Output != nil
	}
}

// decodeInput splits a ["name", type] pair. A bare type yields an empty name.
func decodeInput(raw json.RawMessage) (string, Type) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) != 2 {
			return "", Unknown{Raw: string(raw)}
		}
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			slog.Debug("malformed parameter name", "raw", string(pair[0]), "error", err)
		}
		return name, orUnknown(DecodeType(pair[1]), pair[1])
	}
	return "", orUnknown(DecodeType(raw), raw)
}

func decodeFunctionPointer(raw json.RawMessage) Type {
	decl, ok := decodeFnDecl(raw)
	if !ok {
		return Unknown{Raw: string(raw)}
	}
	fp := FunctionPointer{Output: DecodeType(decl.Output)}
	for _, in := range decl.Inputs {
		_, t := decodeInput(in)
		fp.Inputs = append(fp.Inputs, t)
	}
	return fp
}

func decodeTuple(raw json.RawMessage) Type {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		// Tolerate a single non-array element.
		return Tuple{Elems: []Type{orUnknown(DecodeType(raw), raw)}}
	}
	t := Tuple{}
	for _, e := range elems {
		t.Elems = append(t.Elems, orUnknown(DecodeType(e), e))
	}
	return t
}

func decodeArray(raw json.RawMessage) Type {
	var a struct {
		Type json.RawMessage `json:"type"`
		Len  json.RawMessage `json:"len"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return Unknown{Raw: string(raw)}
	}
	arr := Array{Inner: orUnknown(DecodeType(a.Type), a.Type)}
	var s string
	var n json.Number
	switch {
	case json.Unmarshal(a.Len, &s) == nil:
		arr.Len = s
	case json.Unmarshal(a.Len, &n) == nil:
		arr.Len = n.String()
	}
	return arr
}

func decodeDynTrait(raw json.RawMessage) Type {
	var d struct {
		Traits []struct {
			Trait json.RawMessage `json:"trait"`
		} `json:"traits"`
		Lifetime *string `json:"lifetime"`
	}
	if err := json.Unmarshal(raw, &d); err != nil || len(d.Traits) == 0 {
		return Unknown{Raw: string(raw)}
	}
	obj := TraitObject{Dyn: true}
	for _, t := range d.Traits {
		obj.Bounds = append(obj.Bounds, decodePath(t.Trait))
	}
	if d.Lifetime != nil {
		obj.Lifetime = *d.Lifetime
	}
	return obj
}

func decodeImplTrait(raw json.RawMessage) Type {
	var bounds []json.RawMessage
	if err := json.Unmarshal(raw, &bounds); err != nil || len(bounds) == 0 {
		return Unknown{Raw: string(raw)}
	}
	obj := TraitObject{}
	for _, b := range bounds {
		obj.Bounds = append(obj.Bounds, decodeBound(b))
	}
	return obj
}

// orUnknown keeps composite nodes total: a missing inner type becomes
// Unknown rather than nil.
func orUnknown(t Type, raw json.RawMessage) Type {
	if t == nil {
		return Unknown{Raw: string(bytes.TrimSpace(raw))}
	}
	return t
}

func withTick(lifetime string) string {
	if strings.HasPrefix(lifetime, "'") {
		return lifetime
	}
	return "'" + lifetime
}
