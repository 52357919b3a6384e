package typegraph

import (
	"log/slog"
	"strings"
)

// UnknownType is rendered for any node the formatter cannot express.
const UnknownType = "/* unknown type */"

// Formatter renders Type values as source-language type expressions.
type Formatter struct {
	Logger *slog.Logger
}

// Format renders t using the default logger for diagnostics.
func Format(t Type) string {
	return (&Formatter{}).Format(t)
}

// Format renders t. It is total: every input, including nil and zero-valued
// variants, yields a non-empty string.
func (f *Formatter) Format(t Type) string {
	switch t := t.(type) {
	case nil:
		f.logger().Debug("formatting absent type")
		return UnknownType
	case Primitive:
		if t.Name == "" {
			return f.unknown("", "primitive without a name")
		}
		return t.Name
	case Path:
		return f.formatPath(t)
	case Reference:
		var b strings.Builder
		b.WriteString("&")
		if t.Lifetime != "" {
			b.WriteString(withTick(t.Lifetime))
			b.WriteString(" ")
		}
		if t.Mutable {
			b.WriteString("mut ")
		}
		b.WriteString(f.Format(t.Inner))
		return b.String()
	case RawPointer:
		if t.Mutable {
			return "*mut " + f.Format(t.Inner)
		}
		return "*const " + f.Format(t.Inner)
	case FunctionPointer:
		s := "fn(" + f.formatList(t.Inputs) + ")"
		if t.Output != nil {
			s += " -> " + f.Format(t.Output)
		}
		return s
	case Tuple:
		if len(t.Elems) == 0 {
			return "()"
		}
		return "(" + f.formatList(t.Elems) + ")"
	case Slice:
		return "[" + f.Format(t.Inner) + "]"
	case Array:
		n := t.Len
		if n == "" {
			n = "?"
		}
		return "[" + f.Format(t.Inner) + "; " + n + "]"
	case TraitObject:
		return f.formatTraitObject(t)
	case Binding:
		return f.formatBinding(t)
	case Unknown:
		return f.unknown(t.Raw, "unrecognised type shape")
	default:
		return f.unknown("", "unsupported type variant")
	}
}

func (f *Formatter) formatPath(p Path) string {
	if p.Name == "" {
		return f.unknown("", "path without a name")
	}
	if p.Parenthesized {
		s := p.Name + "(" + f.formatList(p.Args) + ")"
		if p.Output != nil {
			s += " -> " + f.Format(p.Output)
		}
		return s
	}
	if len(p.Args) == 0 {
		return p.Name
	}
	return p.Name + "<" + f.formatList(p.Args) + ">"
}

func (f *Formatter) formatTraitObject(t TraitObject) string {
	parts := make([]string, 0, len(t.Bounds)+1)
	for _, b := range t.Bounds {
		parts = append(parts, f.Format(b))
	}
	if t.Lifetime != "" {
		parts = append(parts, withTick(t.Lifetime))
	}
	if len(parts) == 0 {
		return f.unknown("", "trait object without bounds")
	}
	prefix := "impl "
	if t.Dyn {
		prefix = "dyn "
	}
	return prefix + strings.Join(parts, " + ")
}

func (f *Formatter) formatBinding(b Binding) string {
	if b.Name == "" {
		return f.unknown("", "binding without a name")
	}
	if b.Equals != nil {
		return b.Name + " = " + f.Format(b.Equals)
	}
	if len(b.Bounds) == 0 {
		return f.unknown("", "binding without a constraint")
	}
	parts := make([]string, 0, len(b.Bounds))
	for _, t := range b.Bounds {
		parts = append(parts, f.Format(t))
	}
	return b.Name + ": " + strings.Join(parts, " + ")
}

func (f *Formatter) formatList(ts []Type) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, f.Format(t))
	}
	return strings.Join(parts, ", ")
}

func (f *Formatter) unknown(raw, reason string) string {
	if raw == "" || raw == "{}" {
		f.logger().Debug("formatting unknown type", "reason", reason)
	} else {
		f.logger().Warn("formatting unknown type", "reason", reason, "raw", raw)
	}
	return UnknownType
}

func (f *Formatter) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
