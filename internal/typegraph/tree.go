package typegraph

// Mode selects how the root module of a tree is presented.
type Mode int

const (
	Library Mode = iota
	Executable
)

func (m Mode) String() string {
	if m == Executable {
		return "executable"
	}
	return "library"
}

// Target names the tree to build: the mode and the root item id. An empty
// Root uses the index's own root.
type Target struct {
	Mode Mode
	Root ID
}

// Tree is the normalized module hierarchy of one index.
type Tree struct {
	Mode    Mode
	Root    *Module
	Modules []*Module // breadth-first, root first, elided modules excluded
	// Dangling lists child ids referenced by some container but absent from
	// the index.
	Dangling []ID

	index  *Index
	owners map[ID]owner
}

// owner records where a classified item is documented.
type owner struct {
	module *Module
	name   string
}

// Empty reports whether the root has no classified children.
func (t *Tree) Empty() bool {
	return t.Root == nil || t.Root.childCount() == 0
}

// Module is one namespace with its classified children. Path holds the
// module names from the root down to and including this module.
type Module struct {
	ID     ID
	Name   string
	Path   []string
	Docs   string
	Links  map[string]ID
	IsRoot bool

	Submodules  []ID
	Structs     []Struct
	Enums       []Enum
	Traits      []Trait
	Functions   []Function
	Constants   []Constant
	TypeAliases []TypeAlias
}

func (m *Module) childCount() int {
	return len(m.Submodules) + len(m.Structs) + len(m.Enums) + len(m.Traits) +
		len(m.Functions) + len(m.Constants) + len(m.TypeAliases)
}

// Ancestors returns the path segments above this module.
func (m *Module) Ancestors() []string {
	if len(m.Path) == 0 {
		return nil
	}
	return m.Path[:len(m.Path)-1]
}

type Struct struct {
	Name   string
	Docs   string
	Links  map[string]ID
	Fields []Field
}

// Field is a struct field. A nil Type means the field's type could not be
// resolved.
type Field struct {
	Name string
	Type Type
}

type Enum struct {
	Name     string
	Docs     string
	Links    map[string]ID
	Variants []string
}

type Trait struct {
	Name  string
	Docs  string
	Links map[string]ID
	Items []string
}

type Function struct {
	Name   string
	Docs   string
	Links  map[string]ID
	Params []Param
	Output Type // nil when the function returns unit
}

type Param struct {
	Name string
	Type Type
}

type Constant struct {
	Name  string
	Docs  string
	Links map[string]ID
	Type  Type
	Expr  string
}

type TypeAlias struct {
	Name  string
	Docs  string
	Links map[string]ID
	Type  Type
}
