// Package proto extracts a flat documentation view from .proto files.
package proto

// Schema is everything documented from one .proto file, in source order.
type Schema struct {
	Package  string
	Syntax   string
	Imports  []string
	Services []Service
	Messages []Message
	Enums    []Enum
}

type Service struct {
	Name string
	Docs []string
	RPCs []RPC
}

type RPC struct {
	Name            string
	Request         string
	Response        string
	ClientStreaming bool
	ServerStreaming bool
	Docs            []string
}

type Message struct {
	Name   string
	Docs   []string
	Fields []Field
}

// Field is one message field. Repeated and Optional are both set when the
// source carries both labels; presentation decides which one wins.
type Field struct {
	Type     string
	Name     string
	Number   string
	Repeated bool
	Optional bool
	Docs     []string
}

type Enum struct {
	Name   string
	Docs   []string
	Values []EnumValue
}

type EnumValue struct {
	Name   string
	Number string
	Docs   []string
}
