// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Record and variant layouts.
//
// Michelson has only binary products (pair) and binary sums (or), so a record
// or variant with N named fields is encoded as a binary tree whose leaves are
// the field names. The layout chooses that tree:
//
//	right comb (default)   a, (b, (c, d))
//	explicit               ((a, b), (c, d))
//
// A layout is valid for a field set only when its leaves are exactly the
// field names, each once.
package types

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

// Layout is a binary tree over field names.
type Layout interface {
	sexpr.Encodable

	// Fields flattens the tree left to right.
	Fields() []string

	String() string
	layoutNode()
}

// Leaf is a single field.
type Leaf struct {
	Name string
}

// Branch groups two subtrees into one pair (record) or or (variant).
type Branch struct {
	Left, Right Layout
}

func (*Leaf) layoutNode()   {}
func (*Branch) layoutNode() {}

func (l *Leaf) Fields() []string { return []string{l.Name} }

func (b *Branch) Fields() []string {
	return append(b.Left.Fields(), b.Right.Fields()...)
}

func (l *Leaf) Encode(e *sexpr.Encoder) {
	e.Open("")
	e.Quote(l.Name)
	e.Close()
}

func (b *Branch) Encode(e *sexpr.Encoder) {
	e.Open("")
	b.Left.Encode(e)
	b.Right.Encode(e)
	e.Close()
}

func (l *Leaf) String() string   { return sexpr.Sprint(l) }
func (b *Branch) String() string { return sexpr.Sprint(b) }

// ComposeRightComb returns the default layout for names: every field nests
// to the right of its predecessor. It returns nil for an empty list.
func ComposeRightComb(names []string) Layout {
	if len(names) == 0 {
		return nil
	}
	var tree Layout = &Leaf{Name: names[len(names)-1]}
	for i := len(names) - 2; i >= 0; i-- {
		tree = &Branch{Left: &Leaf{Name: names[i]}, Right: tree}
	}
	return tree
}

// ParseLayout builds a layout from its nested-list form: a string is a leaf,
// a two element []interface{} is a branch.
//
//	ParseLayout([]interface{}{[]interface{}{"a", "b"}, "c"})  // ((a, b), c)
func ParseLayout(spec interface{}) (Layout, error) {
	switch v := spec.(type) {
	case string:
		if v == "" {
			return nil, diag.Newf(diag.LayoutMismatch, "", "empty field name in layout")
		}
		return &Leaf{Name: v}, nil
	case []string:
		if len(v) != 2 {
			return nil, diag.Newf(diag.LayoutMismatch, strings.Join(v, ","), "a layout group needs exactly 2 elements, got %d", len(v))
		}
		return ParseLayout([]interface{}{v[0], v[1]})
	case []interface{}:
		if len(v) != 2 {
			return nil, diag.Newf(diag.LayoutMismatch, fmt.Sprint(v), "a layout group needs exactly 2 elements, got %d", len(v))
		}
		left, err := ParseLayout(v[0])
		if err != nil {
			return nil, err
		}
		right, err := ParseLayout(v[1])
		if err != nil {
			return nil, err
		}
		return &Branch{Left: left, Right: right}, nil
	case Layout:
		return v, nil
	default:
		return nil, diag.Newf(diag.LayoutMismatch, fmt.Sprint(v), "unsupported layout element %T", v)
	}
}

// MustParseLayout is like ParseLayout but panics on error.
func MustParseLayout(spec interface{}) Layout {
	l, err := ParseLayout(spec)
	if err != nil {
		panic(err)
	}
	return l
}

// Validate checks that layout covers names exactly once each.
func Validate(layout Layout, names []string) error {
	want := mapset.NewSet()
	for _, n := range names {
		want.Add(n)
	}
	if layout == nil {
		if want.Cardinality() == 0 {
			return nil
		}
		return diag.Newf(diag.LayoutMismatch, "", "no layout for %d fields", want.Cardinality())
	}
	seen := mapset.NewSet()
	for _, n := range layout.Fields() {
		if !want.Contains(n) {
			return diag.Newf(diag.LayoutMismatch, n, "layout names a field the type does not have")
		}
		if !seen.Add(n) {
			return diag.Newf(diag.LayoutMismatch, n, "layout names the field more than once")
		}
	}
	if missing := want.Difference(seen); missing.Cardinality() > 0 {
		return diag.Newf(diag.LayoutMismatch, "", "layout omits fields %s", sortedNames(missing))
	}
	return nil
}

func sortedNames(s mapset.Set) string {
	names := make([]string, 0, s.Cardinality())
	for _, v := range s.ToSlice() {
		names = append(names, v.(string))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// encodeLayout writes (Some <tree>) or None.
func encodeLayout(e *sexpr.Encoder, l Layout) {
	if l == nil {
		e.Atom("None")
		return
	}
	e.Open("Some")
	l.Encode(e)
	e.Close()
}
