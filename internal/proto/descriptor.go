package proto

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Finding is one place where the line parser's flat view diverges from the
// compiled descriptor.
type Finding struct {
	Element string
	Message string
}

func (f Finding) String() string {
	return f.Element + ": " + f.Message
}

// CrossCheck compiles name (relative to dir) with protocompile and compares
// the result against s. Compile errors are returned as-is; callers treat
// them as advisory since the line parser accepts sources protoc rejects.
func CrossCheck(ctx context.Context, dir, name string, s *Schema) ([]Finding, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{dir},
		}),
	}

	files, err := compiler.Compile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("compiling %s: no files produced", name)
	}
	return compare(files[0], s), nil
}

func compare(fd protoreflect.FileDescriptor, s *Schema) []Finding {
	var findings []Finding
	add := func(element, format string, args ...any) {
		findings = append(findings, Finding{Element: element, Message: fmt.Sprintf(format, args...)})
	}

	if pkg := string(fd.Package()); pkg != s.Package {
		add(fd.Path(), "package is %q, parsed %q", pkg, s.Package)
	}

	services := fd.Services()
	if services.Len() != len(s.Services) {
		add(fd.Path(), "%d services declared, %d parsed", services.Len(), len(s.Services))
	}
	for i := 0; i < services.Len(); i++ {
		sd := services.Get(i)
		parsed := findService(s, string(sd.Name()))
		if parsed == nil {
			add(string(sd.FullName()), "service not parsed")
			continue
		}
		if sd.Methods().Len() != len(parsed.RPCs) {
			add(string(sd.FullName()), "%d methods declared, %d parsed", sd.Methods().Len(), len(parsed.RPCs))
		}
	}

	messages := fd.Messages()
	if messages.Len() != len(s.Messages) {
		add(fd.Path(), "%d top-level messages declared, %d parsed", messages.Len(), len(s.Messages))
	}
	for i := 0; i < messages.Len(); i++ {
		md := messages.Get(i)
		if n := nestedCount(md); n > 0 {
			add(string(md.FullName()), "%d nested declarations are documented flat", n)
		}
		parsed := findMessage(s, string(md.Name()))
		if parsed == nil {
			add(string(md.FullName()), "message not parsed")
			continue
		}
		if md.Fields().Len() != len(parsed.Fields) {
			add(string(md.FullName()), "%d fields declared, %d parsed", md.Fields().Len(), len(parsed.Fields))
		}
	}

	enums := fd.Enums()
	if enums.Len() != len(s.Enums) {
		add(fd.Path(), "%d top-level enums declared, %d parsed", enums.Len(), len(s.Enums))
	}

	return findings
}

// nestedCount counts nested messages and enums, ignoring synthetic map
// entry messages.
func nestedCount(md protoreflect.MessageDescriptor) int {
	n := md.Enums().Len()
	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		if !nested.Get(i).IsMapEntry() {
			n++
		}
	}
	return n
}

func findService(s *Schema, name string) *Service {
	for i := range s.Services {
		if s.Services[i].Name == name {
			return &s.Services[i]
		}
	}
	return nil
}

func findMessage(s *Schema, name string) *Message {
	for i := range s.Messages {
		if s.Messages[i].Name == name {
			return &s.Messages[i]
		}
	}
	return nil
}
