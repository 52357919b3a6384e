// Package render turns parsed schemas and normalized module trees into
// documentation pages.
package render

import (
	"path/filepath"
	"strings"

	"github.com/jcdickinson/refdocs/internal/markdown"
)

// DefaultExt is the page file extension used when none is configured.
const DefaultExt = ".mdx"

// Page is one generated documentation page. FileName is slash-separated and
// relative to the output directory.
type Page struct {
	FileName     string
	Title        string
	Description  string
	SidebarOrder int
	Body         string
}

// FrontMatter returns the page's metadata header.
func (p Page) FrontMatter() markdown.FrontMatter {
	return markdown.FrontMatter{
		Title:       p.Title,
		Description: p.Description,
		Sidebar:     markdown.Sidebar{Order: p.SidebarOrder},
	}
}

// Bytes renders the page file contents: front matter, a blank line, then
// the body.
func (p Page) Bytes() ([]byte, error) {
	header, err := p.FrontMatter().Encode()
	if err != nil {
		return nil, err
	}
	return append(header, p.Body...), nil
}

// ProtoFileName maps a .proto file name to its page name. service.proto is
// the main API description and becomes api<ext>.
func ProtoFileName(name, ext string) string {
	base := filepath.Base(name)
	if base == "service.proto" {
		return "api" + normalizeExt(ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	if ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

// PlaceholderPage is written in place of the API reference when there are no
// .proto sources to document.
func PlaceholderPage(ext string) Page {
	return Page{
		FileName:     "api" + normalizeExt(ext),
		Title:        "gRPC API Reference",
		Description:  "Protocol Buffer definitions and gRPC service documentation",
		SidebarOrder: 1,
		Body: "## Protocol Buffer Definitions\n\n" +
			"No `.proto` files were found when this page was generated.\n\n" +
			"## Service Overview\n\n" +
			"*API documentation will be generated automatically from Protocol Buffer definitions once they are available.*\n",
	}
}

// escapeCell makes s safe to place in a pipe table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
