// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package sexpr implements the textual encoding consumed by the downstream
// contract compiler.
//
// The grammar is a parenthesised prefix notation:
//
//	(atom arg1 arg2 ... argN)
//
// where every argument is itself a group, a quoted string, a bare decimal
// numeral, a bare 0x-prefixed hex string, or one of the boolean atoms True and
// False. Tokens are separated by exactly one space. The downstream compiler
// matches this byte for byte, so all nodes emit text through an Encoder
// rather than formatting strings by hand.
package sexpr

import (
	"bytes"
	"math/big"
	"strconv"

	"github.com/probechain/go-probe-dsl/lang/source"
)

// Encodable is implemented by every node that can be serialized.
type Encodable interface {
	Encode(e *Encoder)
}

// Encoder accumulates serialized text. The zero value is ready to use.
//
// Encoding never stops half way: a node that cannot be represented calls
// Fail and writes its sentinel, so String always yields complete text while
// Err reports the first failure.
type Encoder struct {
	buf   bytes.Buffer
	sep   bool // a separator is due before the next token
	depth int
	err   error
}

// Serialize encodes n and returns its text, or the first error reported
// while encoding it.
func Serialize(n Encodable) (string, error) {
	var e Encoder
	n.Encode(&e)
	if e.err != nil {
		return "", e.err
	}
	return e.String(), nil
}

// Sprint encodes n ignoring failures. It backs the String methods of nodes.
func Sprint(n Encodable) string {
	var e Encoder
	n.Encode(&e)
	return e.String()
}

func (e *Encoder) space() {
	if e.sep {
		e.buf.WriteByte(' ')
	}
}

// Open starts a group. An empty atom opens an anonymous group.
func (e *Encoder) Open(atom string) {
	e.space()
	e.buf.WriteByte('(')
	e.depth++
	if atom == "" {
		e.sep = false
		return
	}
	e.buf.WriteString(atom)
	e.sep = true
}

// Close ends the innermost open group.
func (e *Encoder) Close() {
	e.buf.WriteByte(')')
	e.depth--
	e.sep = true
}

// Group writes an anonymous group holding whatever fn encodes. An fn that
// writes nothing yields "()".
func (e *Encoder) Group(fn func()) {
	e.Open("")
	fn()
	e.Close()
}

// Atom writes a bare token.
func (e *Encoder) Atom(raw string) {
	e.space()
	e.buf.WriteString(raw)
	e.sep = true
}

// Quote writes s as a quoted string literal.
func (e *Encoder) Quote(s string) {
	e.Atom(Quote(s))
}

// Int writes a signed decimal numeral.
func (e *Encoder) Int(v int64) {
	e.Atom(strconv.FormatInt(v, 10))
}

// Uint writes an unsigned decimal numeral.
func (e *Encoder) Uint(v uint64) {
	e.Atom(strconv.FormatUint(v, 10))
}

// Big writes an arbitrary precision decimal numeral.
func (e *Encoder) Big(v *big.Int) {
	e.Atom(v.String())
}

// Bool writes one of the boolean atoms.
func (e *Encoder) Bool(v bool) {
	e.Atom(FormatBool(v))
}

// Location writes the provenance pair ("file" line).
func (e *Encoder) Location(l source.Location) {
	e.Open("")
	e.Quote(l.File)
	e.Int(int64(l.Line))
	e.Close()
}

// Encode writes a child node.
func (e *Encoder) Encode(n Encodable) {
	n.Encode(e)
}

// Fail records err unless an earlier failure is already recorded.
func (e *Encoder) Fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Err returns the first failure reported while encoding.
func (e *Encoder) Err() error {
	return e.err
}

// Depth returns the number of groups currently open.
func (e *Encoder) Depth() int {
	return e.depth
}

func (e *Encoder) String() string {
	return e.buf.String()
}
