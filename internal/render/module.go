package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/jcdickinson/refdocs/internal/markdown"
	"github.com/jcdickinson/refdocs/internal/typegraph"
)

// ModuleOptions controls how a module tree is turned into pages.
type ModuleOptions struct {
	// CrateName replaces the root module's own name in titles and paths.
	CrateName string
	// RuntimeTitle titles the root page in executable mode.
	RuntimeTitle string
	Ext          string
	// LinkBase is the site path under which pages are served. Intra-doc
	// links are left untouched when it is empty.
	LinkBase  string
	Formatter *typegraph.Formatter
}

// ModulePages renders one page per module in the tree, in tree order.
func ModulePages(tree *typegraph.Tree, opts ModuleOptions) []Page {
	r := &moduleRenderer{tree: tree, opts: opts, names: map[*typegraph.Module]string{}}
	if r.opts.Formatter == nil {
		r.opts.Formatter = &typegraph.Formatter{}
	}

	pages := make([]Page, 0, len(tree.Modules))
	for _, mod := range tree.Modules {
		pages = append(pages, r.frame(mod))
	}
	for i, mod := range tree.Modules {
		pages[i].Body = r.body(mod)
	}
	return pages
}

type moduleRenderer struct {
	tree  *typegraph.Tree
	opts  ModuleOptions
	names map[*typegraph.Module]string
}

// displayPath is the module path with the root renamed to the crate name.
func (r *moduleRenderer) displayPath(mod *typegraph.Module) []string {
	p := append([]string(nil), mod.Path...)
	if len(p) > 0 && r.opts.CrateName != "" {
		p[0] = r.opts.CrateName
	}
	return p
}

// frame computes everything about a module page except its body.
func (r *moduleRenderer) frame(mod *typegraph.Module) Page {
	ext := normalizeExt(r.opts.Ext)
	display := r.displayPath(mod)

	var page Page
	switch {
	case mod.IsRoot && r.tree.Mode == typegraph.Executable:
		title := r.opts.RuntimeTitle
		if title == "" {
			title = display[0] + " Runtime"
		}
		page = Page{FileName: "runtime" + ext, Title: title, SidebarOrder: 2}
	case mod.IsRoot:
		page = Page{FileName: "crate" + ext, Title: display[0] + " Library", SidebarOrder: 1}
	default:
		ancestors := display[:len(display)-1]
		page = Page{
			FileName:     path.Join(append(append([]string(nil), ancestors...), mod.Name+ext)...),
			Title:        strings.Join(display, "::"),
			SidebarOrder: len(ancestors) + 10,
		}
	}
	page.Description = "Rust API documentation for " + page.Title
	r.names[mod] = page.FileName
	return page
}

func (r *moduleRenderer) body(mod *typegraph.Module) string {
	var b strings.Builder
	if docs := r.docs(mod.Docs, mod.Links, 2); docs != "" {
		b.WriteString(docs)
	} else {
		b.WriteString("No description available.")
	}
	b.WriteString("\n\n")

	r.writeFunctions(&b, mod.Functions)
	r.writeStructs(&b, mod.Structs)
	r.writeEnums(&b, mod.Enums)
	r.writeTraits(&b, mod.Traits)
	r.writeConstants(&b, mod.Constants)
	r.writeTypeAliases(&b, mod.TypeAliases)
	return b.String()
}

// docs prepares free-text documentation for embedding: headings shifted so
// a top-level heading lands at level top, shell fences framed, intra-doc
// links resolved.
func (r *moduleRenderer) docs(text string, links map[string]typegraph.ID, top int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = markdown.DemoteHeadings(text, top)
	text = markdown.FrameShellBlocks(text)
	if linkMap := r.linkMap(links); len(linkMap) > 0 {
		text = markdown.ResolveLinks(text, linkMap)
	}
	return text
}

func (r *moduleRenderer) itemDocs(b *strings.Builder, text string, links map[string]typegraph.ID) {
	if docs := r.docs(text, links, 4); docs != "" {
		b.WriteString(docs)
	} else {
		b.WriteString("*No documentation available.*")
	}
	b.WriteString("\n\n")
}

func (r *moduleRenderer) linkMap(links map[string]typegraph.ID) map[string]string {
	if r.opts.LinkBase == "" || len(links) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(links))
	for text, id := range links {
		target, ok := r.tree.ResolveLink(id)
		if !ok {
			continue
		}
		if target.URL != "" {
			resolved[text] = target.URL
			continue
		}
		name, ok := r.names[target.Module]
		if !ok {
			continue
		}
		url := r.pageURL(name)
		if target.Item != "" {
			url += "#" + strings.ToLower(target.Item)
		}
		resolved[text] = url
	}
	return resolved
}

// pageURL maps a page file name to the route the site serves it under.
func (r *moduleRenderer) pageURL(fileName string) string {
	slug := strings.ToLower(strings.TrimSuffix(fileName, path.Ext(fileName)))
	return strings.TrimSuffix(r.opts.LinkBase, "/") + "/" + slug + "/"
}

func (r *moduleRenderer) format(t typegraph.Type) string {
	return r.opts.Formatter.Format(t)
}

func (r *moduleRenderer) signature(f typegraph.Function) string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if p.Name != "" {
			params = append(params, p.Name+": "+r.format(p.Type))
		} else {
			params = append(params, r.format(p.Type))
		}
	}
	sig := "fn " + f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.Output != nil {
		sig += " -> " + r.format(f.Output)
	}
	return sig
}

func (r *moduleRenderer) writeFunctions(b *strings.Builder, fns []typegraph.Function) {
	if len(fns) == 0 {
		return
	}
	b.WriteString("## Functions\n\n")
	for _, f := range fns {
		fmt.Fprintf(b, "### `%s`\n\n```rust\n%s\n```\n\n", f.Name, r.signature(f))
		r.itemDocs(b, f.Docs, f.Links)
		b.WriteString("---\n\n")
	}
}

func (r *moduleRenderer) writeStructs(b *strings.Builder, structs []typegraph.Struct) {
	if len(structs) == 0 {
		return
	}
	b.WriteString("## Structs\n\n")
	for _, s := range structs {
		fmt.Fprintf(b, "### `%s`\n\n", s.Name)
		r.itemDocs(b, s.Docs, s.Links)
		if len(s.Fields) == 0 {
			fmt.Fprintf(b, "```rust\nstruct %s;\n```\n\n", s.Name)
		} else {
			fmt.Fprintf(b, "```rust\nstruct %s {\n", s.Name)
			for _, f := range s.Fields {
				typ := "()"
				if f.Type != nil {
					typ = r.format(f.Type)
				}
				fmt.Fprintf(b, "  pub %s: %s,\n", f.Name, typ)
			}
			b.WriteString("}\n```\n\n")
		}
		b.WriteString("---\n\n")
	}
}

func (r *moduleRenderer) writeEnums(b *strings.Builder, enums []typegraph.Enum) {
	if len(enums) == 0 {
		return
	}
	b.WriteString("## Enums\n\n")
	for _, e := range enums {
		fmt.Fprintf(b, "### `%s`\n\n", e.Name)
		r.itemDocs(b, e.Docs, e.Links)
		fmt.Fprintf(b, "```rust\nenum %s {\n", e.Name)
		for _, v := range e.Variants {
			fmt.Fprintf(b, "  %s,\n", v)
		}
		b.WriteString("}\n```\n\n---\n\n")
	}
}

func (r *moduleRenderer) writeTraits(b *strings.Builder, traits []typegraph.Trait) {
	if len(traits) == 0 {
		return
	}
	b.WriteString("## Traits\n\n")
	for _, t := range traits {
		fmt.Fprintf(b, "### `%s`\n\n", t.Name)
		r.itemDocs(b, t.Docs, t.Links)
		if len(t.Items) > 0 {
			b.WriteString("**Items:**\n\n")
			for _, item := range t.Items {
				fmt.Fprintf(b, "- `%s`\n", item)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
}

func (r *moduleRenderer) writeConstants(b *strings.Builder, consts []typegraph.Constant) {
	if len(consts) == 0 {
		return
	}
	b.WriteString("## Constants\n\n")
	for _, c := range consts {
		decl := "const " + c.Name + ": " + r.format(c.Type)
		if c.Expr != "" {
			decl += " = " + c.Expr
		}
		fmt.Fprintf(b, "### `%s`\n\n```rust\n%s;\n```\n\n", c.Name, decl)
		r.itemDocs(b, c.Docs, c.Links)
		b.WriteString("---\n\n")
	}
}

func (r *moduleRenderer) writeTypeAliases(b *strings.Builder, aliases []typegraph.TypeAlias) {
	if len(aliases) == 0 {
		return
	}
	b.WriteString("## Type Aliases\n\n")
	for _, a := range aliases {
		fmt.Fprintf(b, "### `%s`\n\n```rust\ntype %s = %s;\n```\n\n", a.Name, a.Name, r.format(a.Type))
		r.itemDocs(b, a.Docs, a.Links)
		b.WriteString("---\n\n")
	}
}
