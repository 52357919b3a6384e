package markdown

import (
	"regexp"
	"slices"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

func parse(src string) ast.Node {
	return gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))
}

// ResolveLinks rewrites markdown link destinations using the provided link
// map. The document is parsed to find link destinations, then targeted string
// replacements preserve the original formatting. Keys that appear only as
// shortcut references ([`Name`]) get a reference definition appended.
func ResolveLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	seen := make(map[string]bool)
	type replacement struct {
		oldDest string
		newDest string
	}
	var replacements []replacement

	ast.WalkFunc(parse(src), func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if newDest, ok := linkMap[dest]; ok && !seen[dest] {
				seen[dest] = true
				replacements = append(replacements, replacement{dest, newDest})
			}
		}
		return ast.GoToNext
	})

	result := src

	// Inline links: [text](destination)
	for _, r := range replacements {
		result = strings.ReplaceAll(result, "]("+r.oldDest+")", "]("+r.newDest+")")
	}

	// Reference-style definitions: [ref]: destination
	if len(replacements) > 0 {
		refMap := make(map[string]string, len(replacements))
		for _, r := range replacements {
			refMap["]: "+r.oldDest] = "]: " + r.newDest
		}
		lines := strings.Split(result, "\n")
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			for oldSuffix, newSuffix := range refMap {
				if strings.HasSuffix(trimmed, oldSuffix) {
					lines[i] = strings.Replace(line, oldSuffix, newSuffix, 1)
					break
				}
			}
		}
		result = strings.Join(lines, "\n")
	}

	// Shortcut references: [key] with no definition.
	var defs []string
	for _, key := range sortedKeys(linkMap) {
		if seen[key] || !strings.Contains(result, "["+key+"]") {
			continue
		}
		if strings.Contains(result, "["+key+"]: ") {
			continue
		}
		defs = append(defs, "["+key+"]: "+linkMap[key])
	}
	if len(defs) > 0 {
		result = strings.TrimRight(result, "\n") + "\n\n" + strings.Join(defs, "\n")
	}

	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var (
	fenceRE   = regexp.MustCompile("^(\\s{0,3})(`{3,}|~{3,})\\s*([^\\s`]*)(.*)$")
	atxRE     = regexp.MustCompile(`^(\s{0,3})(#{1,6})(\s|$)`)
	setextRE  = regexp.MustCompile(`^\s{0,3}(=+|-+)\s*$`)
	breakRE   = regexp.MustCompile(`^\s{0,3}((-\s*){3,}|(\*\s*){3,}|(_\s*){3,})$`)
	listRE    = regexp.MustCompile(`^\s{0,3}([-*+]|\d{1,9}[.)])(\s|$)`)
	shellLang = []string{"bash", "sh", "zsh", "shell", "console"}
)

// DemoteHeadings shifts every heading so that a level-1 heading becomes
// level top. Levels are capped at 6 and fenced code is left untouched.
func DemoteHeadings(src string, top int) string {
	offset := top - 1
	if offset <= 0 {
		return src
	}

	hasHeading := false
	ast.WalkFunc(parse(src), func(node ast.Node, entering bool) ast.WalkStatus {
		if _, ok := node.(*ast.Heading); ok && entering {
			hasHeading = true
			return ast.Terminate
		}
		return ast.GoToNext
	})
	if !hasHeading {
		return src
	}

	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	var fence string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fence != "" {
			if closesFence(line, fence) {
				fence = ""
			}
			out = append(out, line)
			continue
		}
		if m := fenceRE.FindStringSubmatch(line); m != nil {
			fence = m[2]
			out = append(out, line)
			continue
		}
		if m := atxRE.FindStringSubmatch(line); m != nil {
			level := min(len(m[2])+offset, 6)
			out = append(out, m[1]+strings.Repeat("#", level)+line[len(m[1])+len(m[2]):])
			continue
		}
		// Setext heading: a paragraph line underlined with '=' (level 1) or
		// '-' (level 2). A '-' run after a blank line is a thematic break.
		if i+1 < len(lines) && isParagraphLine(line) {
			if m := setextRE.FindStringSubmatch(lines[i+1]); m != nil {
				level := 1
				if m[1][0] == '-' {
					level = 2
				}
				out = append(out, strings.Repeat("#", min(level+offset, 6))+" "+strings.TrimSpace(line))
				i++
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isParagraphLine(line string) bool {
	return strings.TrimSpace(line) != "" && !breakRE.MatchString(line) && !listRE.MatchString(line)
}

// FrameShellBlocks adds a frame="none" attribute to shell code fences that
// do not already carry a frame attribute.
func FrameShellBlocks(src string) string {
	hasShell := false
	ast.WalkFunc(parse(src), func(node ast.Node, entering bool) ast.WalkStatus {
		if cb, ok := node.(*ast.CodeBlock); ok && entering && cb.IsFenced {
			lang, _, _ := strings.Cut(string(cb.Info), " ")
			if slices.Contains(shellLang, lang) {
				hasShell = true
				return ast.Terminate
			}
		}
		return ast.GoToNext
	})
	if !hasShell {
		return src
	}

	lines := strings.Split(src, "\n")
	var fence string
	for i, line := range lines {
		if fence != "" {
			if closesFence(line, fence) {
				fence = ""
			}
			continue
		}
		m := fenceRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fence = m[2]
		if slices.Contains(shellLang, m[3]) && !strings.Contains(m[4], "frame=") {
			lines[i] = strings.TrimRight(line, " \t") + ` frame="none"`
		}
	}
	return strings.Join(lines, "\n")
}

// closesFence reports whether line closes a fence opened with marker.
func closesFence(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(marker) || trimmed[0] != marker[0] {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}
