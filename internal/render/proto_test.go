package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jcdickinson/refdocs/internal/proto"
)

func TestProtoFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"service.proto", "", "api.mdx"},
		{"/abs/dir/service.proto", ".mdx", "api.mdx"},
		{"engine.proto", "", "engine.mdx"},
		{"engine.proto", "md", "engine.md"},
		{"my.service.proto", ".mdx", "my.service.mdx"},
	}

	for _, tt := range tests {
		if got := ProtoFileName(tt.name, tt.ext); got != tt.want {
			t.Errorf("ProtoFileName(%q, %q) = %q, want %q", tt.name, tt.ext, got, tt.want)
		}
	}
}

func TestProtoPageRoundTrip(t *testing.T) {
	t.Parallel()
	s := proto.Parse("message User { string name = 1; // the name\n repeated int32 scores = 2; }")
	page := ProtoPage("user.proto", s, DefaultExt)

	want := "| Field | Type | Number | Description |\n" +
		"|-------|------|--------|-------------|\n" +
		"| `name` | `string` | 1 | the name |\n" +
		"| `scores` | `repeated int32` | 2 | - |\n"
	if !strings.Contains(page.Body, want) {
		t.Errorf("field table missing from body:\n%s", page.Body)
	}
	if page.Title != "user API" {
		t.Errorf("got title %q, want %q", page.Title, "user API")
	}
	if page.Description != "gRPC API documentation for user" {
		t.Errorf("got description %q", page.Description)
	}
}

func TestProtoPageRepeatedWinsOverOptional(t *testing.T) {
	t.Parallel()
	s := &proto.Schema{Messages: []proto.Message{{
		Name:   "M",
		Fields: []proto.Field{{Type: "bytes", Name: "b", Number: "1", Repeated: true, Optional: true}},
	}}}
	body := ProtoPage("m.proto", s, "").Body
	if !strings.Contains(body, "`repeated bytes`") {
		t.Errorf("expected repeated prefix in %q", body)
	}
	if strings.Contains(body, "optional") {
		t.Errorf("optional prefix must not appear alongside repeated: %q", body)
	}
}

func TestProtoPageSections(t *testing.T) {
	t.Parallel()
	s := &proto.Schema{
		Package: "pai.v1",
		Syntax:  "proto3",
		Imports: []string{"a.proto"},
		Services: []proto.Service{{
			Name: "Engine",
			Docs: []string{"Runs things."},
			RPCs: []proto.RPC{{Name: "Watch", Request: "Req", Response: "Ev", ServerStreaming: true, Docs: []string{"Streams."}}},
		}},
		Enums: []proto.Enum{{
			Name:   "State",
			Values: []proto.EnumValue{{Name: "IDLE", Number: "0", Docs: []string{"a|b"}}},
		}},
	}
	page := ProtoPage("service.proto", s, DefaultExt)

	if page.FileName != "api.mdx" {
		t.Errorf("got file name %q, want %q", page.FileName, "api.mdx")
	}
	if page.Title != "Engine Service" {
		t.Errorf("got title %q, want %q", page.Title, "Engine Service")
	}
	if page.Description != "gRPC API documentation for pai.v1" {
		t.Errorf("got description %q", page.Description)
	}

	order := []string{
		"## Package\n\n`pai.v1`",
		"**Syntax:** `proto3`",
		"## Imports\n\n- `a.proto`",
		"## Services\n\n### `Engine`\n\nRuns things.",
		"#### RPC Methods\n\n##### `Watch`\n\nStreams.\n\n```protobuf\nrpc Watch(Req) returns (stream Ev)\n```",
		"## Enums",
		"| `IDLE` | 0 | a\\|b |",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(page.Body, want)
		if i < 0 {
			t.Fatalf("missing %q in body:\n%s", want, page.Body)
		}
		if i < last {
			t.Errorf("%q out of order", want)
		}
		last = i
	}
	if strings.Contains(page.Body, "## Messages") {
		t.Error("empty Messages section rendered")
	}
}

func TestProtoPageEmptySchema(t *testing.T) {
	t.Parallel()
	page := ProtoPage("empty.proto", &proto.Schema{}, DefaultExt)
	if page.Body != "" {
		t.Errorf("got body %q, want empty", page.Body)
	}
}

func TestProtoPageIdempotent(t *testing.T) {
	t.Parallel()
	src := "syntax = \"proto3\";\npackage x;\n// Doc.\nservice S {\n  rpc A(B) returns (C);\n}\nmessage B {\n  string a = 1;\n}\n"

	first, err := ProtoPage("x.proto", proto.Parse(src), DefaultExt).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	second, err := ProtoPage("x.proto", proto.Parse(src), DefaultExt).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("rendering is not deterministic")
	}
	if !bytes.HasPrefix(first, []byte("---\ntitle: S Service\n")) {
		t.Errorf("unexpected header: %q", first)
	}
}

func TestPlaceholderPage(t *testing.T) {
	t.Parallel()
	page := PlaceholderPage("")
	if page.FileName != "api.mdx" || page.Title != "gRPC API Reference" || page.SidebarOrder != 1 {
		t.Errorf("got %+v", page)
	}
}

func TestProtoToolFrontMatter(t *testing.T) {
	t.Parallel()
	fm := ProtoToolFrontMatter("/x/engine.proto")
	if fm.Title != "engine API" || fm.Sidebar.Order != 1 {
		t.Errorf("got %+v", fm)
	}
}
