package typegraph

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Item kinds in classification order. The first discriminant present on an
// item decides its group.
var kindOrder = []string{
	"module",
	"struct",
	"enum",
	"trait",
	"function",
	"constant",
	"type_alias",
	"typedef",
}

// innerKind returns the first known discriminant key on an item's inner
// payload, or "" when none matches.
func innerKind(inner json.RawMessage) string {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(inner, &outer); err != nil {
		return ""
	}
	for _, k := range kindOrder {
		if _, ok := outer[k]; ok {
			return k
		}
	}
	return ""
}

// Normalize walks the index breadth-first from the target root and builds
// the module tree. Every item id is processed at most once, so cyclic module
// references terminate. Child ids absent from the index are skipped and
// recorded in Tree.Dangling. Non-root modules with no classified children
// are elided.
func Normalize(idx *Index, target Target) (*Tree, error) {
	rootID := target.Root
	if rootID == "" {
		rootID = idx.Root
	}
	rootItem, ok := idx.Lookup(rootID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoot, rootID)
	}
	if innerKind(rootItem.Inner) != "module" {
		return nil, fmt.Errorf("%w: %s", ErrRootNotModule, rootID)
	}

	n := &normalizer{
		idx:     idx,
		visited: map[ID]bool{rootID: true},
		tree: &Tree{
			Mode:   target.Mode,
			index:  idx,
			owners: map[ID]owner{},
		},
	}

	type queued struct {
		id     ID
		parent []string
	}
	queue := []queued{{id: rootID}}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		item, _ := idx.Lookup(q.id)
		mod := n.module(q.id, item, q.parent, q.id == rootID)

		if mod.IsRoot {
			n.tree.Root = mod
		} else if mod.childCount() == 0 {
			slog.Debug("eliding empty module", "module", mod.Name)
			continue
		}
		n.tree.Modules = append(n.tree.Modules, mod)
		n.tree.owners[mod.ID] = owner{module: mod}

		for _, sub := range mod.Submodules {
			if n.visited[sub] {
				continue
			}
			n.visited[sub] = true
			queue = append(queue, queued{id: sub, parent: mod.Path})
		}
	}

	return n.tree, nil
}

type normalizer struct {
	idx      *Index
	visited  map[ID]bool
	dangling map[ID]bool
	tree     *Tree
}

func (n *normalizer) lookup(id ID) (*Item, bool) {
	item, ok := n.idx.Lookup(id)
	if !ok {
		if n.dangling == nil {
			n.dangling = map[ID]bool{}
		}
		if !n.dangling[id] {
			n.dangling[id] = true
			n.tree.Dangling = append(n.tree.Dangling, id)
			slog.Debug("skipping dangling item reference", "id", id)
		}
	}
	return item, ok
}

func (n *normalizer) module(id ID, item *Item, parent []string, isRoot bool) *Module {
	path := make([]string, 0, len(parent)+1)
	path = append(path, parent...)
	path = append(path, item.name())

	mod := &Module{
		ID:     id,
		Name:   item.name(),
		Path:   path,
		Docs:   item.docs(),
		Links:  item.Links,
		IsRoot: isRoot,
	}
	var data struct {
		Items []ID `json:"items"`
	}
	if err := json.Unmarshal(item.kindData("module"), &data); err != nil {
		slog.Warn("malformed module payload", "module", mod.Name, "error", err)
		return mod
	}

	for _, id := range data.Items {
		child, ok := n.lookup(id)
		if !ok {
			continue
		}
		n.classify(mod, id, child)
	}
	return mod
}

func (n *normalizer) classify(mod *Module, id ID, child *Item) {
	kind := innerKind(child.Inner)
	if kind != "" && kind != "module" {
		n.tree.owners[id] = owner{module: mod, name: child.name()}
	}

	switch kind {
	case "module":
		mod.Submodules = append(mod.Submodules, id)
	case "struct":
		mod.Structs = append(mod.Structs, n.structItem(child))
	case "enum":
		mod.Enums = append(mod.Enums, n.enumItem(child))
	case "trait":
		mod.Traits = append(mod.Traits, n.traitItem(child))
	case "function":
		mod.Functions = append(mod.Functions, functionItem(child))
	case "constant":
		mod.Constants = append(mod.Constants, constantItem(child))
	case "type_alias":
		mod.TypeAliases = append(mod.TypeAliases, aliasItem(child, "type_alias"))
	case "typedef":
		mod.TypeAliases = append(mod.TypeAliases, aliasItem(child, "typedef"))
	}
}

func (n *normalizer) structItem(item *Item) Struct {
	s := Struct{Name: item.name(), Docs: item.docs(), Links: item.Links}

	var data struct {
		Kind   json.RawMessage `json:"kind"`
		Fields []*ID           `json:"fields"`
	}
	if err := json.Unmarshal(item.kindData("struct"), &data); err != nil {
		return s
	}

	var fieldIDs []*ID
	var kind map[string]json.RawMessage
	if err := json.Unmarshal(data.Kind, &kind); err == nil {
		if plain, ok := kind["plain"]; ok {
			fieldIDs = plainFields(plain)
		} else if tuple, ok := kind["tuple"]; ok {
			if err := json.Unmarshal(tuple, &fieldIDs); err != nil {
				slog.Debug("malformed tuple struct fields", "struct", s.Name, "error", err)
			}
		}
	} else {
		// Older formats: {"struct_type": "plain", "fields": [...]}.
		fieldIDs = data.Fields
	}

	for _, fid := range fieldIDs {
		// Tuple structs mark stripped fields with null.
		if fid == nil {
			continue
		}
		field, ok := n.lookup(*fid)
		if !ok {
			continue
		}
		s.Fields = append(s.Fields, Field{
			Name: field.name(),
			Type: DecodeType(field.kindData("struct_field")),
		})
	}
	return s
}

// plainFields accepts both {"fields": [...]} and a bare id array.
func plainFields(raw json.RawMessage) []*ID {
	var ids []*ID
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids
	}
	var p struct {
		Fields []*ID `json:"fields"`
	}
	if err := json.Unmarshal(raw, &p); err == nil {
		return p.Fields
	}
	return nil
}

func (n *normalizer) enumItem(item *Item) Enum {
	e := Enum{Name: item.name(), Docs: item.docs(), Links: item.Links}
	var data struct {
		Variants []ID `json:"variants"`
	}
	if err := json.Unmarshal(item.kindData("enum"), &data); err != nil {
		return e
	}
	for _, vid := range data.Variants {
		v, ok := n.lookup(vid)
		if !ok {
			continue
		}
		e.Variants = append(e.Variants, v.name())
	}
	return e
}

func (n *normalizer) traitItem(item *Item) Trait {
	t := Trait{Name: item.name(), Docs: item.docs(), Links: item.Links}
	var data struct {
		Items []ID `json:"items"`
	}
	if err := json.Unmarshal(item.kindData("trait"), &data); err != nil {
		return t
	}
	for _, id := range data.Items {
		member, ok := n.lookup(id)
		if !ok {
			continue
		}
		t.Items = append(t.Items, member.name())
	}
	return t
}

func functionItem(item *Item) Function {
	f := Function{Name: item.name(), Docs: item.docs(), Links: item.Links}
	decl, ok := decodeFnDecl(item.kindData("function"))
	if !ok {
		return f
	}
	for _, in := range decl.Inputs {
		name, t := decodeInput(in)
		f.Params = append(f.Params, Param{Name: name, Type: t})
	}
	f.Output = DecodeType(decl.Output)
	return f
}

func constantItem(item *Item) Constant {
	c := Constant{Name: item.name(), Docs: item.docs(), Links: item.Links}
	var data struct {
		Type  json.RawMessage `json:"type"`
		Expr  string          `json:"expr"`
		Const *struct {
			Expr string `json:"expr"`
		} `json:"const"`
	}
	if err := json.Unmarshal(item.kindData("constant"), &data); err != nil {
		return c
	}
	c.Type = DecodeType(data.Type)
	c.Expr = data.Expr
	if data.Const != nil && data.Const.Expr != "" {
		c.Expr = data.Const.Expr
	}
	return c
}

func aliasItem(item *Item, kind string) TypeAlias {
	a := TypeAlias{Name: item.name(), Docs: item.docs(), Links: item.Links}
	var data struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(item.kindData(kind), &data); err != nil {
		return a
	}
	a.Type = DecodeType(data.Type)
	return a
}
