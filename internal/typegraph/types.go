package typegraph

// Type is the canonical representation of a type expression. It is a closed
// union: only the variants declared in this file implement it.
type Type interface {
	isType()
}

// Primitive is a bare name rendered verbatim: builtin types, generic
// parameters, lifetimes used as generic arguments, and the inferred type `_`.
type Primitive struct {
	Name string
}

// Path is a named type with optional generic arguments. Both resolved and
// qualified paths decode into Path. Parenthesized holds Fn(A, B) -> C sugar,
// in which case Args are the inputs and Output the optional return type.
type Path struct {
	Name          string
	Args          []Type
	Parenthesized bool
	Output        Type
}

// Reference is a borrowed reference, &'a mut T.
type Reference struct {
	Lifetime string
	Mutable  bool
	Inner    Type
}

// RawPointer is *const T or *mut T.
type RawPointer struct {
	Mutable bool
	Inner   Type
}

// FunctionPointer is fn(A, B) -> C. Output is nil for unit-returning functions.
type FunctionPointer struct {
	Inputs []Type
	Output Type
}

// Tuple with zero elements is the unit type.
type Tuple struct {
	Elems []Type
}

type Slice struct {
	Inner Type
}

// Array is [T; N]. Len is kept as text since it may be a const expression.
type Array struct {
	Inner Type
	Len   string
}

// TraitObject is `dyn A + B` (Dyn) or `impl A + B`.
type TraitObject struct {
	Dyn      bool
	Bounds   []Type
	Lifetime string
}

// Binding is an associated-type argument: Item = T, or Item: Bound.
type Binding struct {
	Name   string
	Equals Type
	Bounds []Type
}

// Unknown is the terminal fallback for shapes the decoder does not recognise.
// Raw keeps the offending JSON for diagnostics.
type Unknown struct {
	Raw string
}

func (Primitive) isType()       {}
func (Path) isType()            {}
func (Reference) isType()       {}
func (RawPointer) isType()      {}
func (FunctionPointer) isType() {}
func (Tuple) isType()           {}
func (Slice) isType()           {}
func (Array) isType()           {}
func (TraitObject) isType()     {}
func (Binding) isType()         {}
func (Unknown) isType()         {}
