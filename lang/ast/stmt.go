// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// Block is a statement sequence. It encodes as one group (s1 s2 ...); an
// empty block is ().
type Block []Statement

func (b Block) Encode(e *sexpr.Encoder) {
	e.Open("")
	for _, s := range b {
		if s != nil {
			s.Encode(e)
		}
	}
	e.Close()
}

func (b Block) String() string { return sexpr.Sprint(b) }

// SetValue assigns value to target: (set t v loc).
func SetValue(target, value Expression, at ...source.Location) Statement {
	return newStmt("set", target, value, locOf(at))
}

// DefineLocal declares a local: (defineLocal "n" v True loc).
func DefineLocal(name string, value Expression, mutable bool, at ...source.Location) Statement {
	return newStmt("defineLocal", quoted(name), value, flag(mutable), locOf(at))
}

// Require fails with message unless cond holds: (verify cond msg loc). A nil
// message is omitted.
func Require(cond, message Expression, at ...source.Location) Statement {
	if message == nil {
		return newStmt("verify", cond, locOf(at))
	}
	return newStmt("verify", cond, message, locOf(at))
}

// Return sets the result of a lambda or view: (result e loc).
func Return(e Expression, at ...source.Location) Statement {
	return newStmt("result", e, locOf(at))
}

// FailWith aborts with e: (failwith e loc).
func FailWith(e Expression, at ...source.Location) Statement {
	return newStmt("failwith", e, locOf(at))
}

// SetType pins the type of e: (set_type e <t> loc).
func SetType(e Expression, t types.Type, at ...source.Location) Statement {
	return newStmt("set_type", e, t, locOf(at))
}

// ---- Map and set helpers ---------------------------------------------------

// SetMapEntry writes m[key] = value: (set (getItem m k loc) v loc).
func SetMapEntry(m, key, value Expression, at ...source.Location) Statement {
	l := locOf(at)
	return newStmt("set", newExpr("getItem", m, key, l), value, l)
}

// DeleteMapEntry removes key: (delItem m k loc).
func DeleteMapEntry(m, key Expression, at ...source.Location) Statement {
	return newStmt("delItem", m, key, locOf(at))
}

// AddToSet inserts elem: (updateSet s e True loc).
func AddToSet(s, elem Expression, at ...source.Location) Statement {
	return newStmt("updateSet", s, elem, flag(true), locOf(at))
}

// RemoveFromSet deletes elem: (updateSet s e False loc).
func RemoveFromSet(s, elem Expression, at ...source.Location) Statement {
	return newStmt("updateSet", s, elem, flag(false), locOf(at))
}
