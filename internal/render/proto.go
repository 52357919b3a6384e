package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jcdickinson/refdocs/internal/markdown"
	"github.com/jcdickinson/refdocs/internal/proto"
)

// ProtoPage renders the documentation page for one parsed .proto file.
// Sections appear in a fixed order and empty ones are omitted.
func ProtoPage(fileName string, s *proto.Schema, ext string) Page {
	base := protoBase(fileName)

	title := base + " API"
	if len(s.Services) > 0 {
		title = s.Services[0].Name + " Service"
	}
	subject := s.Package
	if subject == "" {
		subject = base
	}

	var b strings.Builder
	if s.Package != "" {
		fmt.Fprintf(&b, "## Package\n\n`%s`\n\n", s.Package)
	}
	if s.Syntax != "" {
		fmt.Fprintf(&b, "**Syntax:** `%s`\n\n", s.Syntax)
	}
	if len(s.Imports) > 0 {
		b.WriteString("## Imports\n\n")
		for _, imp := range s.Imports {
			fmt.Fprintf(&b, "- `%s`\n", imp)
		}
		b.WriteString("\n")
	}
	writeServices(&b, s.Services)
	writeMessages(&b, s.Messages)
	writeEnums(&b, s.Enums)

	return Page{
		FileName:     ProtoFileName(fileName, ext),
		Title:        title,
		Description:  "gRPC API documentation for " + subject,
		SidebarOrder: 1,
		Body:         b.String(),
	}
}

// ProtoToolFrontMatter is the header injected into external tool output that
// lacks one.
func ProtoToolFrontMatter(fileName string) markdown.FrontMatter {
	base := protoBase(fileName)
	return markdown.FrontMatter{
		Title:       base + " API",
		Description: "Protocol Buffer definitions and gRPC service documentation for " + base,
		Sidebar:     markdown.Sidebar{Order: 1},
	}
}

func protoBase(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeDocs(b *strings.Builder, docs []string) {
	if len(docs) > 0 {
		b.WriteString(strings.Join(docs, "\n"))
		b.WriteString("\n\n")
	}
}

func writeServices(b *strings.Builder, services []proto.Service) {
	if len(services) == 0 {
		return
	}
	b.WriteString("## Services\n\n")
	for _, svc := range services {
		fmt.Fprintf(b, "### `%s`\n\n", svc.Name)
		writeDocs(b, svc.Docs)
		if len(svc.RPCs) == 0 {
			continue
		}
		b.WriteString("#### RPC Methods\n\n")
		for _, rpc := range svc.RPCs {
			fmt.Fprintf(b, "##### `%s`\n\n", rpc.Name)
			writeDocs(b, rpc.Docs)
			fmt.Fprintf(b, "```protobuf\nrpc %s(%s) returns (%s)\n```\n\n",
				rpc.Name, streamed(rpc.Request, rpc.ClientStreaming), streamed(rpc.Response, rpc.ServerStreaming))
			b.WriteString("---\n\n")
		}
	}
}

func streamed(t string, stream bool) string {
	if stream {
		return "stream " + t
	}
	return t
}

func writeMessages(b *strings.Builder, messages []proto.Message) {
	if len(messages) == 0 {
		return
	}
	b.WriteString("## Messages\n\n")
	for _, msg := range messages {
		fmt.Fprintf(b, "### `%s`\n\n", msg.Name)
		writeDocs(b, msg.Docs)
		if len(msg.Fields) > 0 {
			b.WriteString("#### Fields\n\n")
			b.WriteString("| Field | Type | Number | Description |\n")
			b.WriteString("|-------|------|--------|-------------|\n")
			for _, f := range msg.Fields {
				fmt.Fprintf(b, "| `%s` | `%s` | %s | %s |\n",
					f.Name, escapeCell(fieldType(f)), f.Number, description(f.Docs))
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
}

// fieldType prefixes the field label. repeated wins when a field carries
// both labels.
func fieldType(f proto.Field) string {
	switch {
	case f.Repeated:
		return "repeated " + f.Type
	case f.Optional:
		return "optional " + f.Type
	default:
		return f.Type
	}
}

func description(docs []string) string {
	if len(docs) == 0 {
		return "-"
	}
	return escapeCell(strings.Join(docs, " "))
}

func writeEnums(b *strings.Builder, enums []proto.Enum) {
	if len(enums) == 0 {
		return
	}
	b.WriteString("## Enums\n\n")
	for _, e := range enums {
		fmt.Fprintf(b, "### `%s`\n\n", e.Name)
		writeDocs(b, e.Docs)
		if len(e.Values) > 0 {
			b.WriteString("| Name | Number | Description |\n")
			b.WriteString("|------|--------|-------------|\n")
			for _, v := range e.Values {
				fmt.Fprintf(b, "| `%s` | %s | %s |\n", v.Name, v.Number, description(v.Docs))
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
}
