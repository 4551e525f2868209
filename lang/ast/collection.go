// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// typedExpr is a composite literal: a Call that also knows its value type.
type typedExpr struct {
	Call
	typ types.Type
}

func (*typedExpr) expressionNode()         {}
func (t *typedExpr) ValueType() types.Type { return t.typ }

// ---- Sequences -------------------------------------------------------------

// List builds (list loc i1 i2 ...).
func List(elem types.Type, items []Expression, at ...source.Location) Expression {
	return sequence("list", types.List(elem), items, at)
}

// Set builds (set loc i1 i2 ...).
func Set(elem types.Type, items []Expression, at ...source.Location) Expression {
	return sequence("set", types.Set(elem), items, at)
}

func sequence(name string, t types.Type, items []Expression, l []source.Location) Expression {
	args := make([]sexpr.Encodable, 0, len(items)+1)
	args = append(args, locOf(l))
	for _, it := range items {
		args = append(args, it)
	}
	return &typedExpr{Call{Atom: name, Args: args}, t}
}

// ---- Options and variants --------------------------------------------------

// Some builds (variant "Some" v loc).
func Some(v Expression, at ...source.Location) Expression {
	t := TypeOf(v)
	if !types.IsUnknown(t) {
		t = types.Option(t)
	}
	return &typedExpr{Call{Atom: "variant", Args: []sexpr.Encodable{quoted("Some"), v, loc(source.Pick(at))}}, t}
}

// None builds (variant "None" (literal (unit) loc) loc) of type option t.
func None(t types.Type, at ...source.Location) Expression {
	l := source.Pick(at)
	vt := types.Unknown
	if !types.IsUnknown(t) {
		vt = types.Option(t)
	}
	return &typedExpr{Call{Atom: "variant", Args: []sexpr.Encodable{quoted("None"), Unit(l), loc(l)}}, vt}
}

// Variant builds (variant "name" value loc). The variant type is optional.
func Variant(name string, value Expression, variantType types.Type, at ...source.Location) Expression {
	if variantType == nil {
		variantType = types.Unknown
	}
	return &typedExpr{Call{Atom: "variant", Args: []sexpr.Encodable{quoted(name), value, loc(source.Pick(at))}}, variantType}
}

// ---- Pairs -----------------------------------------------------------------

// Pair builds (tuple loc a b).
func Pair(a, b Expression, at ...source.Location) Expression {
	ta, tb := TypeOf(a), TypeOf(b)
	t := types.Unknown
	if !types.IsUnknown(ta) && !types.IsUnknown(tb) {
		t = types.Pair(ta, tb)
	}
	return &typedExpr{Call{Atom: "tuple", Args: []sexpr.Encodable{loc(source.Pick(at)), a, b}}, t}
}

// ---- Records ---------------------------------------------------------------

// RecordField is one named child of a record literal.
type RecordField struct {
	Name  string
	Value Expression
}

// RecordLiteral is (record loc (a e1) (b e2) ...). Its value type is the
// record type of its children with the default layout.
type RecordLiteral struct {
	fields []RecordField
	typ    *types.Composite
	loc    source.Location
}

func (*RecordLiteral) expressionNode() {}

// Record builds a record literal. Every child must have a known value type.
func Record(fields []RecordField, at ...source.Location) (*RecordLiteral, error) {
	tf := make([]types.Field, len(fields))
	for i, f := range fields {
		if f.Value == nil {
			return nil, diag.Newf(diag.UnresolvedFieldType, f.Name, "record field has no value")
		}
		t := TypeOf(f.Value)
		if types.IsUnknown(t) {
			return nil, diag.Newf(diag.UnresolvedFieldType, f.Name, "cannot derive the field type from %s", f.Value)
		}
		tf[i] = types.Field{Name: f.Name, Type: t}
	}
	l := source.Pick(at)
	rt, err := types.NewRecord(tf, types.At(l))
	if err != nil {
		return nil, err
	}
	cp := make([]RecordField, len(fields))
	copy(cp, fields)
	return &RecordLiteral{fields: cp, typ: rt, loc: l}, nil
}

// MustRecord is like Record but panics on error.
func MustRecord(fields []RecordField, at ...source.Location) *RecordLiteral {
	r, err := Record(fields, at...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *RecordLiteral) ValueType() types.Type { return r.typ }

// RecordType returns the derived record type.
func (r *RecordLiteral) RecordType() *types.Composite { return r.typ }

func (r *RecordLiteral) Encode(e *sexpr.Encoder) {
	e.Open("record")
	e.Location(r.loc)
	for _, f := range r.fields {
		e.Open(f.Name)
		f.Value.Encode(e)
		e.Close()
	}
	e.Close()
}

func (r *RecordLiteral) String() string { return sexpr.Sprint(r) }

// ---- Maps ------------------------------------------------------------------

// MapEntry is one row of a map literal.
type MapEntry struct {
	Key, Value Expression
}

func (m MapEntry) Encode(e *sexpr.Encoder) {
	e.Open("")
	m.Key.Encode(e)
	m.Value.Encode(e)
	e.Close()
}

// Map builds (map loc (k1 v1) (k2 v2) ...). No rows is a legal empty map.
func Map(key, value types.Type, rows []MapEntry, at ...source.Location) Expression {
	return mapLiteral("map", types.Map(key, value), rows, at)
}

// BigMap builds (big_map loc (k1 v1) ...).
func BigMap(key, value types.Type, rows []MapEntry, at ...source.Location) Expression {
	return mapLiteral("big_map", types.BigMap(key, value), rows, at)
}

func mapLiteral(name string, t types.Type, rows []MapEntry, l []source.Location) Expression {
	args := make([]sexpr.Encodable, 0, len(rows)+1)
	args = append(args, locOf(l))
	for _, r := range rows {
		args = append(args, r)
	}
	return &typedExpr{Call{Atom: name, Args: args}, t}
}

// ---- Lambdas ---------------------------------------------------------------

// DefaultLambdaArg is the argument name used when LambdaSpec.Arg is empty.
const DefaultLambdaArg = "lparams"

// LambdaSpec describes the signature of a lambda literal.
type LambdaSpec struct {
	Arg            string
	Input, Output  types.Type
	WithStorage    bool
	WithOperations bool
}

// LambdaLiteral is
// (lambda <id> <withStorage> <withOperations> "<arg>" loc (stmts)).
type LambdaLiteral struct {
	id   uint64
	spec LambdaSpec
	body Block
	loc  source.Location
}

func (*LambdaLiteral) expressionNode() {}

// Lambda builds a lambda literal with a fresh id from ids. The body callback
// runs once, synchronously, with the argument expression.
func Lambda(ids *IDAllocator, spec LambdaSpec, body func(arg Expression) []Statement, at ...source.Location) *LambdaLiteral {
	if spec.Arg == "" {
		spec.Arg = DefaultLambdaArg
	}
	l := &LambdaLiteral{id: ids.Next(), spec: spec, loc: source.Pick(at)}
	if body != nil {
		l.body = Block(body(l.Arg()))
	}
	return l
}

// ID returns the id allocated to the lambda.
func (l *LambdaLiteral) ID() uint64 { return l.id }

// Arg returns the argument expression (lambdaParams <id> "<arg>" loc).
func (l *LambdaLiteral) Arg() Expression {
	return &typedExpr{
		Call{Atom: "lambdaParams", Args: []sexpr.Encodable{number(l.id), quoted(l.spec.Arg), loc(l.loc)}},
		orUnknown(l.spec.Input),
	}
}

func (l *LambdaLiteral) ValueType() types.Type {
	if types.IsUnknown(l.spec.Input) || types.IsUnknown(l.spec.Output) {
		return types.Unknown
	}
	return types.Lambda(l.spec.Input, l.spec.Output)
}

func (l *LambdaLiteral) Encode(e *sexpr.Encoder) {
	e.Open("lambda")
	e.Uint(l.id)
	e.Bool(l.spec.WithStorage)
	e.Bool(l.spec.WithOperations)
	e.Quote(l.spec.Arg)
	e.Location(l.loc)
	l.body.Encode(e)
	e.Close()
}

func (l *LambdaLiteral) String() string { return sexpr.Sprint(l) }

func orUnknown(t types.Type) types.Type {
	if t == nil {
		return types.Unknown
	}
	return t
}
