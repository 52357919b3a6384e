package typegraph

import (
	"strconv"
	"strings"
)

// LinkTarget is where an intra-doc link points: either an item documented
// in this tree (Module set, Item empty for the module page itself) or an
// external documentation URL.
type LinkTarget struct {
	Module *Module
	Item   string
	URL    string
}

// ResolveLink resolves an intra-doc link target id. Items documented in the
// tree resolve to their module page; items of other crates resolve to their
// published documentation when the index records where it lives.
func (t *Tree) ResolveLink(id ID) (LinkTarget, bool) {
	if o, ok := t.owners[id]; ok {
		return LinkTarget{Module: o.module, Item: o.name}, true
	}
	if t.index == nil {
		return LinkTarget{}, false
	}
	summary, ok := t.index.summary(id)
	if !ok || summary.CrateID == 0 {
		return LinkTarget{}, false
	}
	url := t.index.externalURL(summary)
	if url == "" {
		return LinkTarget{}, false
	}
	return LinkTarget{URL: url}, true
}

// kindPages maps summary kinds to rustdoc HTML page prefixes.
var kindPages = map[string]string{
	"struct":     "struct",
	"enum":       "enum",
	"union":      "union",
	"trait":      "trait",
	"function":   "fn",
	"type_alias": "type",
	"typedef":    "type",
	"constant":   "constant",
	"static":     "static",
	"macro":      "macro",
	"primitive":  "primitive",
}

// externalURL builds the rustdoc HTML URL of an item in a dependency crate.
// Crates without an html_root_url are assumed to be on docs.rs.
func (idx *Index) externalURL(s Summary) string {
	if len(s.Path) == 0 {
		return ""
	}
	root := idx.externalRoot(s.CrateID)
	if root == "" {
		return ""
	}

	if s.Kind == "module" {
		return root + strings.Join(s.Path, "/") + "/index.html"
	}
	prefix, ok := kindPages[s.Kind]
	if !ok {
		return ""
	}
	dir := strings.Join(s.Path[:len(s.Path)-1], "/")
	return root + dir + "/" + prefix + "." + s.Path[len(s.Path)-1] + ".html"
}

func (idx *Index) externalRoot(crateID int) string {
	ext, ok := idx.externalCrate(strconv.Itoa(crateID))
	if !ok {
		return ""
	}
	if ext.HTMLRootURL != "" {
		return strings.TrimSuffix(ext.HTMLRootURL, "/") + "/"
	}
	if ext.Name == "" {
		return ""
	}
	return "https://docs.rs/" + strings.ReplaceAll(ext.Name, "_", "-") + "/latest/"
}
