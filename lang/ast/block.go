// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import (
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
)

// Block statements are small builders. They are Statements from the moment
// they are created; Build reports whether the required blocks were supplied,
// and encoding an incomplete builder fails with the same error.

// ---------------------------------------------------------------------------
// If
// ---------------------------------------------------------------------------

type ifState int

const (
	ifConstructed ifState = iota
	ifThenSet
	ifElseSet
)

// IfStatement is (ifBlock cond (then...) loc) (elseBlock (else...)).
type IfStatement struct {
	cond  Expression
	then  Block
	els   Block
	state ifState
	err   error
	loc   source.Location
}

// If starts a conditional. Then and Else must be called in that order; a
// missing Else is an empty else block.
func If(cond Expression, at ...source.Location) *IfStatement {
	return &IfStatement{cond: cond, loc: source.Pick(at)}
}

// Then sets the statements run when the condition holds.
func (s *IfStatement) Then(stmts ...Statement) *IfStatement {
	if s.state != ifConstructed {
		s.fail("then block already set")
		return s
	}
	s.then, s.state = Block(stmts), ifThenSet
	return s
}

// Else sets the statements run otherwise.
func (s *IfStatement) Else(stmts ...Statement) *IfStatement {
	if s.state != ifThenSet {
		s.fail("else block must follow exactly one then block")
		return s
	}
	s.els, s.state = Block(stmts), ifElseSet
	return s
}

func (s *IfStatement) fail(msg string) {
	if s.err == nil {
		s.err = diag.Newf(diag.IncompleteStatement, "ifBlock", "%s", msg)
	}
}

// Build returns the statement, or the first builder misuse.
func (s *IfStatement) Build() (Statement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

func (*IfStatement) statementNode() {}

func (s *IfStatement) Encode(e *sexpr.Encoder) {
	if s.err != nil {
		e.Fail(s.err)
	}
	e.Open("ifBlock")
	s.cond.Encode(e)
	s.then.Encode(e)
	e.Location(s.loc)
	e.Close()
	e.Open("elseBlock")
	s.els.Encode(e)
	e.Close()
}

func (s *IfStatement) String() string { return sexpr.Sprint(s) }

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

// ForStatement is (forGroup "n" iterable (body) loc).
type ForStatement struct {
	name     string
	iterable Expression
	body     Block
	done     bool
	err      error
	loc      source.Location
}

// ForEachOf iterates over a list, set or map. The iterator gets a generated
// name unless Named is called before Do.
func ForEachOf(iterable Expression, at ...source.Location) *ForStatement {
	return &ForStatement{name: nextName(&forCounter, "__for_"), iterable: iterable, loc: source.Pick(at)}
}

// Range builds (range from to step loc).
func Range(from, to, step Expression, at ...source.Location) Expression {
	return newExpr("range", from, to, step, locOf(at))
}

// For iterates over the integers from, from+step, ... below to.
func For(from, to, step Expression, at ...source.Location) *ForStatement {
	return ForEachOf(Range(from, to, step, at...), at...)
}

// Named sets the iterator name.
func (s *ForStatement) Named(name string) *ForStatement {
	if s.done {
		s.fail("iterator renamed after its body was built")
		return s
	}
	s.name = name
	return s
}

// Name returns the iterator name.
func (s *ForStatement) Name() string { return s.name }

// Do builds the body. fn runs once with the iterator, (getLocal "n").
func (s *ForStatement) Do(fn func(it Expression) []Statement) *ForStatement {
	if s.done {
		s.fail("loop body already set")
		return s
	}
	s.body, s.done = Block(fn(GetVariable(s.name))), true
	return s
}

func (s *ForStatement) fail(msg string) {
	if s.err == nil {
		s.err = diag.Newf(diag.IncompleteStatement, s.name, "%s", msg)
	}
}

func (s *ForStatement) check() error {
	if s.err != nil {
		return s.err
	}
	if !s.done {
		return diag.Newf(diag.IncompleteStatement, s.name, "loop has no body; call Do")
	}
	return nil
}

func (s *ForStatement) Build() (Statement, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (*ForStatement) statementNode() {}

func (s *ForStatement) Encode(e *sexpr.Encoder) {
	if err := s.check(); err != nil {
		e.Fail(err)
	}
	e.Open("forGroup")
	e.Quote(s.name)
	s.iterable.Encode(e)
	s.body.Encode(e)
	e.Location(s.loc)
	e.Close()
}

func (s *ForStatement) String() string { return sexpr.Sprint(s) }

// WhileStatement is (whileBlock cond (body) loc).
type WhileStatement struct {
	name string
	cond Expression
	body Block
	done bool
	err  error
	loc  source.Location
}

// While starts a loop that runs while cond holds.
func While(cond Expression, at ...source.Location) *WhileStatement {
	return &WhileStatement{name: nextName(&whileCounter, "__while_"), cond: cond, loc: source.Pick(at)}
}

// Name returns the generated loop name used in diagnostics.
func (s *WhileStatement) Name() string { return s.name }

// Do builds the body.
func (s *WhileStatement) Do(fn func() []Statement) *WhileStatement {
	if s.done {
		if s.err == nil {
			s.err = diag.Newf(diag.IncompleteStatement, s.name, "loop body already set")
		}
		return s
	}
	s.body, s.done = Block(fn()), true
	return s
}

func (s *WhileStatement) check() error {
	if s.err != nil {
		return s.err
	}
	if !s.done {
		return diag.Newf(diag.IncompleteStatement, s.name, "loop has no body; call Do")
	}
	return nil
}

func (s *WhileStatement) Build() (Statement, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (*WhileStatement) statementNode() {}

func (s *WhileStatement) Encode(e *sexpr.Encoder) {
	if err := s.check(); err != nil {
		e.Fail(err)
	}
	e.Open("whileBlock")
	s.cond.Encode(e)
	s.body.Encode(e)
	e.Location(s.loc)
	e.Close()
}

func (s *WhileStatement) String() string { return sexpr.Sprint(s) }

// ---------------------------------------------------------------------------
// Variant dispatch
// ---------------------------------------------------------------------------

type matchCase struct {
	branch string
	body   Block
}

func (c matchCase) Encode(e *sexpr.Encoder) {
	e.Open("case")
	e.Quote(c.branch)
	c.body.Encode(e)
	e.Close()
}

// MatchStatement is
// (match_cases value "__match_<n>" ((case "A" (body)) ...) loc).
type MatchStatement struct {
	value Expression
	name  string
	cases []matchCase
	err   error
	loc   source.Location
}

// MatchVariant dispatches on the branch of value. At least one Case is
// required.
func MatchVariant(value Expression, at ...source.Location) *MatchStatement {
	return &MatchStatement{value: value, name: nextName(&matchCounter, "__match_"), loc: source.Pick(at)}
}

// Case adds a branch. fn runs once with the branch payload,
// (variant_arg "__match_<n>").
func (s *MatchStatement) Case(branch string, fn func(arg Expression) []Statement) *MatchStatement {
	for _, c := range s.cases {
		if c.branch == branch {
			if s.err == nil {
				s.err = diag.Newf(diag.IncompleteStatement, branch, "branch matched twice")
			}
			return s
		}
	}
	s.cases = append(s.cases, matchCase{branch: branch, body: Block(fn(s.Arg()))})
	return s
}

// Arg returns the expression bound to the payload of the matched branch.
func (s *MatchStatement) Arg() Expression {
	return newExpr("variant_arg", quoted(s.name))
}

// Name returns the generated match argument name.
func (s *MatchStatement) Name() string { return s.name }

func (s *MatchStatement) check() error {
	if s.err != nil {
		return s.err
	}
	if len(s.cases) == 0 {
		return diag.Newf(diag.IncompleteStatement, s.name, "match has no cases")
	}
	return nil
}

func (s *MatchStatement) Build() (Statement, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (*MatchStatement) statementNode() {}

func (s *MatchStatement) Encode(e *sexpr.Encoder) {
	if err := s.check(); err != nil {
		e.Fail(err)
	}
	e.Open("match_cases")
	s.value.Encode(e)
	e.Quote(s.name)
	e.Group(func() {
		for _, c := range s.cases {
			c.Encode(e)
		}
	})
	e.Location(s.loc)
	e.Close()
}

func (s *MatchStatement) String() string { return sexpr.Sprint(s) }
