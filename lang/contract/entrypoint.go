// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package contract

import (
	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// Body builds the statements of an entry point or view. It receives the
// parameter, (params loc), wrapped for field and key access.
type Body func(params ast.Accessor) []ast.Statement

// callable holds what entry points and views share: a name, an optional
// typed parameter and a body that is built exactly once.
type callable struct {
	name     string
	input    types.Type
	hasParam bool
	body     ast.Block
	codeSet  bool
	loc      source.Location
}

func checkName(kind, name string) error {
	if !sexpr.IsSymbol(name) {
		return diag.Newf(diag.InvalidName, name, "%s name must be a non-empty token without spaces, parentheses or quotes", kind)
	}
	return nil
}

func (c *callable) params() ast.Accessor {
	return ast.Access(ast.Params(c.loc))
}

func (c *callable) setCode(kind string, fn Body) error {
	if c.codeSet {
		return diag.Newf(diag.CodeAlreadySet, c.name, "%s body already set", kind)
	}
	c.body = ast.Block(fn(c.params()))
	c.codeSet = true
	return nil
}

// statements returns the body, prefixed with the parameter type annotation
// when there is a parameter.
func (c *callable) statements() ast.Block {
	if !c.hasParam {
		return c.body
	}
	out := make(ast.Block, 0, len(c.body)+1)
	out = append(out, ast.SetType(ast.Params(c.loc), c.input, c.loc))
	return append(out, c.body...)
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// EntryPoint is a named, typed callable of a contract:
//
//	(name originate lazify lazyNoCode hasParam loc (stmts))
type EntryPoint struct {
	callable
	mock       bool
	lazy       bool
	lazyNoCode bool
}

// NewEntryPoint creates an entry point without parameter (input unit).
func NewEntryPoint(name string, at ...source.Location) *EntryPoint {
	return &EntryPoint{callable: callable{name: name, input: types.Unit, loc: source.Pick(at)}}
}

// Input declares the parameter type.
func (ep *EntryPoint) Input(t types.Type) *EntryPoint {
	ep.input, ep.hasParam = t, true
	return ep
}

// Mock keeps the entry point out of the originated contract.
func (ep *EntryPoint) Mock() *EntryPoint {
	ep.mock = true
	return ep
}

// Lazy stores the entry point code in a big map loaded on call.
func (ep *EntryPoint) Lazy() *EntryPoint {
	ep.lazy = true
	return ep
}

// LazyAndCodeless is Lazy with no code at origination; the code has to be
// installed later.
func (ep *EntryPoint) LazyAndCodeless() *EntryPoint {
	ep.lazy, ep.lazyNoCode = true, true
	return ep
}

// Code builds the body. fn runs exactly once; a second call leaves the body
// untouched and returns a CodeAlreadySet error.
func (ep *EntryPoint) Code(fn Body) error {
	return ep.setCode("entry point", fn)
}

// MustCode is like Code but panics on error.
func (ep *EntryPoint) MustCode(fn Body) *EntryPoint {
	if err := ep.Code(fn); err != nil {
		panic(err)
	}
	return ep
}

func (ep *EntryPoint) Name() string              { return ep.name }
func (ep *EntryPoint) InputType() types.Type     { return ep.input }
func (ep *EntryPoint) HasParam() bool            { return ep.hasParam }
func (ep *EntryPoint) IsLazy() bool              { return ep.lazy }
func (ep *EntryPoint) Body() []ast.Statement     { return append([]ast.Statement(nil), ep.body...) }
func (ep *EntryPoint) Location() source.Location { return ep.loc }

func (ep *EntryPoint) Encode(e *sexpr.Encoder) {
	if err := checkName("entry point", ep.name); err != nil {
		e.Fail(err)
	}
	e.Open(ep.name)
	e.Bool(!ep.mock)
	e.Bool(ep.lazy)
	e.Bool(ep.lazyNoCode)
	e.Bool(ep.hasParam)
	e.Location(ep.loc)
	ep.statements().Encode(e)
	e.Close()
}

func (ep *EntryPoint) String() string { return sexpr.Sprint(ep) }

// ---------------------------------------------------------------------------
// On-chain views
// ---------------------------------------------------------------------------

// View is a read-only callable returning a value:
//
//	(onchain "name" hasParam loc <"desc"|None> (stmts))
type View struct {
	callable
	description *string
}

// NewView creates a view without parameter.
func NewView(name string, at ...source.Location) *View {
	return &View{callable: callable{name: name, input: types.Unit, loc: source.Pick(at)}}
}

// Input declares the parameter type.
func (v *View) Input(t types.Type) *View {
	v.input, v.hasParam = t, true
	return v
}

// Description documents the view in the contract metadata.
func (v *View) Description(s string) *View {
	v.description = &s
	return v
}

// Code builds the body; see EntryPoint.Code.
func (v *View) Code(fn Body) error {
	return v.setCode("view", fn)
}

// MustCode is like Code but panics on error.
func (v *View) MustCode(fn Body) *View {
	if err := v.Code(fn); err != nil {
		panic(err)
	}
	return v
}

func (v *View) Name() string          { return v.name }
func (v *View) InputType() types.Type { return v.input }
func (v *View) HasParam() bool        { return v.hasParam }

func (v *View) Encode(e *sexpr.Encoder) {
	if err := checkName("view", v.name); err != nil {
		e.Fail(err)
	}
	e.Open("onchain")
	e.Quote(v.name)
	e.Bool(v.hasParam)
	e.Location(v.loc)
	if v.description == nil {
		e.Atom("None")
	} else {
		e.Quote(*v.description)
	}
	v.statements().Encode(e)
	e.Close()
}

func (v *View) String() string { return sexpr.Sprint(v) }
