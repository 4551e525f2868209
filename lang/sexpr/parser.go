// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package sexpr

import (
	"fmt"
	"strings"
)

// Node is a parsed s-expression.
type Node interface {
	// String prints the node in canonical form, so that printing a parsed
	// serialization reproduces it exactly.
	String() string
	sexprNode()
}

// List is a parenthesised group.
type List struct {
	Items []Node
}

// Atom is a bare token that is not a numeral: a keyword, True/False, None,
// or a 0x-prefixed hex string.
type Atom struct {
	Value string
}

// String is a quoted string literal, unescaped.
type String struct {
	Value string
}

// Number is a bare decimal numeral, kept as text so no precision is lost.
type Number struct {
	Text string
}

func (*List) sexprNode()   {}
func (*Atom) sexprNode()   {}
func (*String) sexprNode() {}
func (*Number) sexprNode() {}

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *Atom) String() string   { return a.Value }
func (s *String) String() string { return Quote(s.Value) }
func (n *Number) String() string { return n.Text }

// Head returns the leading bare atom of the list, or "" when the list is
// empty or starts with something else.
func (l *List) Head() string {
	if len(l.Items) == 0 {
		return ""
	}
	if a, ok := l.Items[0].(*Atom); ok {
		return a.Value
	}
	return ""
}

// Find returns the item following the first bare atom equal to key, as used
// by keyword-argument forms such as "storage <e> storage_type <t>".
func (l *List) Find(key string) (Node, bool) {
	for i := 0; i+1 < len(l.Items); i++ {
		if a, ok := l.Items[i].(*Atom); ok && a.Value == key {
			return l.Items[i+1], true
		}
	}
	return nil, false
}

// SyntaxError describes malformed serialized text.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// parser holds the state of a single Parse run.
type parser struct {
	src string
	pos int
}

// Parse reads a sequence of top-level s-expressions.
func Parse(text string) ([]Node, error) {
	p := &parser{src: text}
	var nodes []Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nodes, nil
		}
		n, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

// ParseOne reads exactly one s-expression.
func ParseOne(text string) (Node, error) {
	nodes, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, &SyntaxError{Offset: 0, Message: fmt.Sprintf("expected one expression, found %d", len(nodes))}
	}
	return nodes[0], nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseNode() (Node, error) {
	switch p.src[p.pos] {
	case '(':
		return p.parseList()
	case ')':
		return nil, p.errorf("unexpected ')'")
	case '"':
		return p.parseString()
	default:
		return p.parseAtom(), nil
	}
}

func (p *parser) parseList() (Node, error) {
	p.pos++ // '('
	list := &List{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return list, nil
		}
		n, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, n)
	}
}

func (p *parser) parseString() (Node, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return &String{Value: b.String()}, nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf("dangling escape")
			}
			switch esc := p.src[p.pos+1]; esc {
			case '\\', '"':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return nil, p.errorf("unknown escape \\%c", esc)
			}
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return nil, &SyntaxError{Offset: start, Message: "unterminated string"}
}

func (p *parser) parseAtom() Node {
	start := p.pos
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '(', ')', '"':
			return classify(p.src[start:p.pos])
		}
		p.pos++
	}
	return classify(p.src[start:])
}

func classify(tok string) Node {
	if isNumeral(tok) {
		return &Number{Text: tok}
	}
	return &Atom{Value: tok}
}

func isNumeral(tok string) bool {
	digits := strings.TrimPrefix(tok, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}
