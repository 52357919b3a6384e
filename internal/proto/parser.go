package proto

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	syntaxRE  = regexp.MustCompile(`^syntax\s*=\s*"([^"]+)"`)
	packageRE = regexp.MustCompile(`^package\s+([\w.]+)`)
	importRE  = regexp.MustCompile(`^import\s+(?:(?:public|weak)\s+)?"([^"]+)"`)
	blockRE   = regexp.MustCompile(`^(service|message|enum)\s+(\w+)\s*\{$`)
	rpcRE     = regexp.MustCompile(`^rpc\s+(\w+)\s*\(\s*(stream\s+)?([^)]+?)\s*\)\s*returns\s*\(\s*(stream\s+)?([^)]+?)\s*\)`)
	fieldRE   = regexp.MustCompile(`^((?:(?:repeated|optional|required)\s+)*)(map\s*<[^>]*>|[\w.]+)\s+(\w+)\s*=\s*(\d+)\s*(?:\[.*\])?\s*;$`)
	enumValRE = regexp.MustCompile(`^(\w+)\s*=\s*(-?\d+)\s*(?:\[.*\])?\s*;$`)
	spaceRE   = regexp.MustCompile(`\s+`)
)

type state int

const (
	stateTop state = iota
	stateService
	stateMessage
	stateEnum
)

// parser is a single-pass line state machine. Blocks are tracked with a
// brace depth counter only; nested messages are not modelled, so their
// fields are attributed to the enclosing message.
type parser struct {
	schema  Schema
	state   state
	depth   int
	pending []string
	// index of the open block item in its collection
	cur int

	inBlockComment bool
}

// Parse extracts the documentation view of a .proto source.
func Parse(text string) *Schema {
	p := &parser{}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	return p.finish()
}

// ParseReader is Parse over a stream.
func ParseReader(r io.Reader) (*Schema, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading proto source: %w", err)
	}
	return p.finish(), nil
}

// finish drops a block left open at end of input.
func (p *parser) finish() *Schema {
	switch p.state {
	case stateService:
		p.schema.Services = p.schema.Services[:p.cur]
	case stateMessage:
		p.schema.Messages = p.schema.Messages[:p.cur]
	case stateEnum:
		p.schema.Enums = p.schema.Enums[:p.cur]
	}
	s := p.schema
	return &s
}

func (p *parser) line(raw string) {
	line := strings.TrimSpace(raw)

	if p.inBlockComment {
		p.blockComment(line)
		return
	}

	switch {
	case line == "":
		p.pending = nil
		return
	case strings.HasPrefix(line, "//"):
		p.pending = append(p.pending, strings.TrimSpace(line[2:]))
		return
	case strings.HasPrefix(line, "/*"):
		p.inBlockComment = true
		p.blockComment(strings.TrimPrefix(line, "/*"))
		return
	}

	code, trailing := splitComment(line)
	var attach func(string)
	for _, stmt := range splitStatements(code) {
		if a := p.statement(stmt); a != nil {
			attach = a
		}
	}
	if trailing != "" && attach != nil {
		attach(trailing)
	}
}

func (p *parser) blockComment(line string) {
	if i := strings.Index(line, "*/"); i >= 0 {
		line = line[:i]
		p.inBlockComment = false
	}
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
	if line != "" {
		p.pending = append(p.pending, line)
	}
}

// takeDocs hands the pending comment block to the item being recognized.
func (p *parser) takeDocs() []string {
	docs := p.pending
	p.pending = nil
	return docs
}

// statement processes one statement and, when it recognized an item,
// returns a function that appends a trailing comment to that item's docs.
func (p *parser) statement(s string) func(string) {
	if s == "}" {
		p.closeBrace()
		return nil
	}

	opens := strings.HasSuffix(s, "{")
	if opens && p.state == stateTop && p.depth == 0 {
		if attach := p.open(s); attach != nil {
			return attach
		}
	}

	var attach func(string)
	switch p.state {
	case stateTop:
		if p.depth == 0 {
			p.declaration(s)
		}
	case stateService:
		attach = p.rpc(s)
	case stateMessage:
		attach = p.field(s)
	case stateEnum:
		attach = p.enumValue(s)
	}
	if opens {
		p.depth++
	}
	return attach
}

func (p *parser) open(s string) func(string) {
	m := blockRE.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	name, docs := m[2], p.takeDocs()
	p.depth = 1

	switch m[1] {
	case "service":
		p.state, p.cur = stateService, len(p.schema.Services)
		p.schema.Services = append(p.schema.Services, Service{Name: name, Docs: docs})
		i := p.cur
		return func(c string) { p.schema.Services[i].Docs = append(p.schema.Services[i].Docs, c) }
	case "message":
		p.state, p.cur = stateMessage, len(p.schema.Messages)
		p.schema.Messages = append(p.schema.Messages, Message{Name: name, Docs: docs})
		i := p.cur
		return func(c string) { p.schema.Messages[i].Docs = append(p.schema.Messages[i].Docs, c) }
	default:
		p.state, p.cur = stateEnum, len(p.schema.Enums)
		p.schema.Enums = append(p.schema.Enums, Enum{Name: name, Docs: docs})
		i := p.cur
		return func(c string) { p.schema.Enums[i].Docs = append(p.schema.Enums[i].Docs, c) }
	}
}

func (p *parser) closeBrace() {
	if p.depth > 0 {
		p.depth--
	}
	if p.depth == 0 {
		p.state = stateTop
	}
}

// declaration handles top-level single-line declarations. Comments above a
// declaration are not documentation for anything and are discarded.
func (p *parser) declaration(s string) {
	if m := syntaxRE.FindStringSubmatch(s); m != nil {
		p.schema.Syntax = m[1]
		p.pending = nil
	} else if m := packageRE.FindStringSubmatch(s); m != nil {
		p.schema.Package = m[1]
		p.pending = nil
	} else if m := importRE.FindStringSubmatch(s); m != nil {
		p.schema.Imports = append(p.schema.Imports, m[1])
		p.pending = nil
	}
}

func (p *parser) rpc(s string) func(string) {
	m := rpcRE.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	svc := &p.schema.Services[p.cur]
	svc.RPCs = append(svc.RPCs, RPC{
		Name:            m[1],
		Request:         m[3],
		Response:        m[5],
		ClientStreaming: m[2] != "",
		ServerStreaming: m[4] != "",
		Docs:            p.takeDocs(),
	})
	i, j := p.cur, len(svc.RPCs)-1
	return func(c string) {
		r := &p.schema.Services[i].RPCs[j]
		r.Docs = append(r.Docs, c)
	}
}

func (p *parser) field(s string) func(string) {
	m := fieldRE.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	labels := strings.Fields(m[1])
	f := Field{
		Type:   normalizeType(m[2]),
		Name:   m[3],
		Number: m[4],
		Docs:   p.takeDocs(),
	}
	for _, l := range labels {
		switch l {
		case "repeated":
			f.Repeated = true
		case "optional":
			f.Optional = true
		}
	}
	msg := &p.schema.Messages[p.cur]
	msg.Fields = append(msg.Fields, f)
	i, j := p.cur, len(msg.Fields)-1
	return func(c string) {
		f := &p.schema.Messages[i].Fields[j]
		f.Docs = append(f.Docs, c)
	}
}

func (p *parser) enumValue(s string) func(string) {
	m := enumValRE.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	e := &p.schema.Enums[p.cur]
	e.Values = append(e.Values, EnumValue{Name: m[1], Number: m[2], Docs: p.takeDocs()})
	i, j := p.cur, len(e.Values)-1
	return func(c string) {
		v := &p.schema.Enums[i].Values[j]
		v.Docs = append(v.Docs, c)
	}
}

// normalizeType collapses whitespace in map types: map < K ,V > becomes
// map<K, V>.
func normalizeType(t string) string {
	if !strings.HasPrefix(t, "map") {
		return t
	}
	t = spaceRE.ReplaceAllString(t, "")
	return strings.ReplaceAll(t, ",", ", ")
}

// splitComment separates code from a trailing // comment, ignoring markers
// inside string literals.
func splitComment(line string) (code, comment string) {
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote != 0:
			if c == '\\' {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+2:])
		}
	}
	return line, ""
}

// splitStatements breaks a line into statements ending in ';' or '{', with
// each '}' as a statement of its own. Separators inside option brackets and
// string literals are not split on.
func splitStatements(code string) []string {
	var (
		stmts   []string
		start   int
		bracket int
		inQuote byte
	)
	emit := func(end int) {
		if s := strings.TrimSpace(code[start:end]); s != "" {
			stmts = append(stmts, s)
		}
		start = end
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if inQuote != 0 {
			if c == '\\' {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
		case '[':
			bracket++
		case ']':
			if bracket > 0 {
				bracket--
			}
		case ';', '{':
			if bracket == 0 {
				emit(i + 1)
			}
		case '}':
			if bracket == 0 {
				emit(i)
				emit(i + 1)
			}
		}
	}
	emit(len(code))
	return stmts
}
