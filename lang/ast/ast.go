// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the expression and statement trees of the contract DSL.
//
// Design overview:
//
//   - All nodes implement Node: they encode themselves through a
//     sexpr.Encoder and String returns the same text.
//   - Expressions and Statements each have a marker interface that embeds
//     Node to enable type-safe composition.
//   - Nodes are immutable once built. Only the block builders (If, loops,
//     MatchVariant) accumulate children before they are serialized.
//   - Most nodes carry a source.Location passed as an optional trailing
//     argument; it is diagnostic only.
package ast

import (
	"strconv"
	"sync/atomic"

	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// ---------------------------------------------------------------------------
// Core interfaces
// ---------------------------------------------------------------------------

// Node is the base interface that every tree node implements.
type Node interface {
	sexpr.Encodable

	// String returns the serialized form of the node. It never fails.
	String() string
}

// Expression is a marker interface for all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a marker interface for all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Typed is implemented by expressions that know their value type.
type Typed interface {
	ValueType() types.Type
}

// TypeOf returns the value type of e, or types.Unknown.
func TypeOf(e Expression) types.Type {
	if t, ok := e.(Typed); ok {
		if vt := t.ValueType(); vt != nil {
			return vt
		}
	}
	if a, ok := e.(Accessor); ok && a.Expression != nil {
		return TypeOf(a.Expression)
	}
	return types.Unknown
}

// ---------------------------------------------------------------------------
// Generic node
// ---------------------------------------------------------------------------

// Call is the generic node (atom arg1 ... argN). Most expressions and simple
// statements are a Call with a fixed argument order.
type Call struct {
	Atom string
	Args []sexpr.Encodable
}

func (c *Call) Encode(e *sexpr.Encoder) {
	e.Open(c.Atom)
	for _, a := range c.Args {
		a.Encode(e)
	}
	e.Close()
}

func (c *Call) String() string { return sexpr.Sprint(c) }

// expr is a Call used as an expression.
type expr struct{ Call }

func (*expr) expressionNode() {}

// stmt is a Call used as a statement.
type stmt struct{ Call }

func (*stmt) statementNode() {}

func newExpr(atom string, args ...sexpr.Encodable) *expr {
	return &expr{Call{Atom: atom, Args: args}}
}

func newStmt(atom string, args ...sexpr.Encodable) *stmt {
	return &stmt{Call{Atom: atom, Args: args}}
}

// ---------------------------------------------------------------------------
// Argument encoders
// ---------------------------------------------------------------------------

type quoted string

func (q quoted) Encode(e *sexpr.Encoder) { e.Quote(string(q)) }

type atom string

func (a atom) Encode(e *sexpr.Encoder) { e.Atom(string(a)) }

type flag bool

func (f flag) Encode(e *sexpr.Encoder) { e.Bool(bool(f)) }

type number int64

func (n number) Encode(e *sexpr.Encoder) { e.Int(int64(n)) }

type loc source.Location

func (l loc) Encode(e *sexpr.Encoder) { e.Location(source.Location(l)) }

// optQuoted writes "s", or None when s is nil.
type optQuoted struct{ s *string }

func (o optQuoted) Encode(e *sexpr.Encoder) {
	if o.s == nil {
		e.Atom("None")
		return
	}
	e.Quote(*o.s)
}

// optExpr writes the expression, or None.
type optExpr struct{ x Expression }

func (o optExpr) Encode(e *sexpr.Encoder) {
	if o.x == nil {
		e.Atom("None")
		return
	}
	o.x.Encode(e)
}

// locOf resolves an optional trailing location to an argument.
func locOf(l []source.Location) loc { return loc(source.Pick(l)) }

// ---------------------------------------------------------------------------
// Id allocation
// ---------------------------------------------------------------------------

// IDAllocator hands out lambda ids. Ids are strictly increasing and unique
// per allocator; a contract owns one so independent builds never interfere.
type IDAllocator struct {
	next uint64
}

// NewIDAllocator returns an allocator whose first id is 0.
func NewIDAllocator() *IDAllocator { return &IDAllocator{} }

// Next returns a fresh id. It is safe for concurrent use.
func (a *IDAllocator) Next() uint64 {
	return atomic.AddUint64(&a.next, 1) - 1
}

// Peek returns the id the next call to Next would return.
func (a *IDAllocator) Peek() uint64 { return atomic.LoadUint64(&a.next) }

// Generated names for loop iterators and match arguments. Each kind has its
// own counter so nested constructs never collide.
var (
	forCounter   uint64
	whileCounter uint64
	matchCounter uint64
)

func nextName(counter *uint64, prefix string) string {
	return prefix + strconv.FormatUint(atomic.AddUint64(counter, 1)-1, 10)
}
