package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontMatterRE matches a YAML front-matter block at the very start of a
// document. The closing delimiter must be unindented.
var frontMatterRE = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n`)

// FrontMatter is the metadata header consumed by the documentation site.
type FrontMatter struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description,omitempty"`
	Sidebar     Sidebar `yaml:"sidebar"`
}

type Sidebar struct {
	Order int `yaml:"order"`
}

// Encode renders fm as a delimited YAML block followed by a blank line.
func (fm FrontMatter) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	return buf.Bytes(), nil
}

// HasFrontMatter reports whether src starts with a YAML front-matter block.
func HasFrontMatter(src string) bool {
	return frontMatterRE.MatchString(src)
}

// ParseFrontMatter splits src into its front matter and body.
func ParseFrontMatter(src string) (FrontMatter, string, error) {
	loc := frontMatterRE.FindStringSubmatchIndex(src)
	if loc == nil {
		return FrontMatter{}, "", errors.New("no front matter block found")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(src[loc[2]:loc[3]]), &fm); err != nil {
		return FrontMatter{}, "", fmt.Errorf("parsing front matter: %w", err)
	}
	return fm, src[loc[1]:], nil
}

// EnsureFrontMatter prepends fm to src unless src already starts with a
// front-matter block, in which case src is returned unchanged.
func EnsureFrontMatter(src string, fm FrontMatter) (string, error) {
	if HasFrontMatter(src) {
		return src, nil
	}
	header, err := fm.Encode()
	if err != nil {
		return "", err
	}
	return string(header) + src, nil
}
