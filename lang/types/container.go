// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package types

import (
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

// arity describes the parameters a container accepts: a number of inner
// types, or a single integer memo size.
type arity struct {
	types int
	memo  bool
}

var containerArity = map[Kind]arity{
	KindList:               {types: 1},
	KindSet:                {types: 1},
	KindOption:             {types: 1},
	KindContract:           {types: 1},
	KindTicket:             {types: 1},
	KindMap:                {types: 2},
	KindBigMap:             {types: 2},
	KindPair:               {types: 2},
	KindLambda:             {types: 2},
	KindSaplingState:       {memo: true},
	KindSaplingTransaction: {memo: true},
}

// Container is a type parameterised by inner types, or by a memo size for
// the sapling types.
type Container struct {
	kind  Kind
	inner []Type
	memo  int
}

// NewContainer builds the container named atom. Params are Type values, or a
// single int for sapling_state and sapling_transaction.
func NewContainer(atom string, params ...interface{}) (*Container, error) {
	kind, ok := kindByAtom[atom]
	if !ok || !kind.IsContainer() {
		return nil, diag.Newf(diag.InvalidArity, atom, "not a container type")
	}
	ar := containerArity[kind]
	if ar.memo {
		if len(params) != 1 {
			return nil, diag.Newf(diag.InvalidArity, atom, "want 1 memo size, got %d parameters", len(params))
		}
		memo, ok := params[0].(int)
		if !ok || memo < 0 {
			return nil, diag.Newf(diag.InvalidArity, atom, "memo size must be a non-negative int, got %v", params[0])
		}
		return &Container{kind: kind, memo: memo}, nil
	}
	if len(params) != ar.types {
		return nil, diag.Newf(diag.InvalidArity, atom, "want %d inner types, got %d", ar.types, len(params))
	}
	inner := make([]Type, len(params))
	for i, p := range params {
		t, ok := p.(Type)
		if !ok {
			return nil, diag.Newf(diag.InvalidArity, atom, "parameter %d is %T, not a type", i, p)
		}
		if IsUnknown(t) {
			return nil, diag.Newf(diag.InvalidArity, atom, "parameter %d is an unresolved type", i)
		}
		inner[i] = t
	}
	return &Container{kind: kind, inner: inner}, nil
}

// MustContainer is like NewContainer but panics on error.
func MustContainer(atom string, params ...interface{}) *Container {
	c, err := NewContainer(atom, params...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Container) Kind() Kind     { return c.kind }
func (c *Container) String() string { return sexpr.Sprint(c) }

// Atom returns the container name.
func (c *Container) Atom() string { return kindNames[c.kind] }

// Inner returns the i-th inner type.
func (c *Container) Inner(i int) Type { return c.inner[i] }

// Params returns the number of inner types.
func (c *Container) Params() int { return len(c.inner) }

// MemoSize returns the memo size of a sapling type.
func (c *Container) MemoSize() int { return c.memo }

// Elem returns the element type of a list, set or option, the value type of
// a map, and the input type of a lambda or contract.
func (c *Container) Elem() Type {
	switch c.kind {
	case KindMap, KindBigMap:
		return c.inner[1]
	case KindSaplingState, KindSaplingTransaction:
		return Unknown
	default:
		return c.inner[0]
	}
}

func (c *Container) Encode(e *sexpr.Encoder) {
	e.Open(c.Atom())
	if containerArity[c.kind].memo {
		e.Int(int64(c.memo))
	}
	for _, t := range c.inner {
		t.Encode(e)
	}
	e.Close()
}

func (c *Container) Equals(other Type) bool {
	o, ok := other.(*Container)
	if !ok || o.kind != c.kind || o.memo != c.memo || len(o.inner) != len(c.inner) {
		return false
	}
	for i := range c.inner {
		if !c.inner[i].Equals(o.inner[i]) {
			return false
		}
	}
	return true
}

// Typed helpers. The inner types are trusted; passing Unknown yields a type
// that fails at serialize time.

func List(elem Type) *Container      { return &Container{kind: KindList, inner: []Type{elem}} }
func Set(elem Type) *Container       { return &Container{kind: KindSet, inner: []Type{elem}} }
func Option(elem Type) *Container    { return &Container{kind: KindOption, inner: []Type{elem}} }
func Contract(param Type) *Container { return &Container{kind: KindContract, inner: []Type{param}} }
func Ticket(content Type) *Container { return &Container{kind: KindTicket, inner: []Type{content}} }

func Map(key, value Type) *Container {
	return &Container{kind: KindMap, inner: []Type{key, value}}
}

func BigMap(key, value Type) *Container {
	return &Container{kind: KindBigMap, inner: []Type{key, value}}
}

func Pair(left, right Type) *Container {
	return &Container{kind: KindPair, inner: []Type{left, right}}
}

func Lambda(in, out Type) *Container {
	return &Container{kind: KindLambda, inner: []Type{in, out}}
}

func SaplingState(memo int) *Container {
	return &Container{kind: KindSaplingState, memo: memo}
}

func SaplingTransaction(memo int) *Container {
	return &Container{kind: KindSaplingTransaction, memo: memo}
}
