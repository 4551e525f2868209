// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// ---------------------------------------------------------------------------
// Access
// ---------------------------------------------------------------------------

// GetVariable reads a local: (getLocal "x").
func GetVariable(name string) Expression {
	return newExpr("getLocal", quoted(name))
}

// Storage is the contract storage: (data).
func Storage() Expression { return newExpr("data") }

// Operations is the pending operation list: (operations).
func Operations() Expression { return newExpr("operations") }

// Params is the parameter of the enclosing entry point or view: (params loc).
func Params(at ...source.Location) Expression {
	return newExpr("params", locOf(at))
}

// Property reads a record field: (attr e "f" loc).
func Property(e Expression, field string, at ...source.Location) Expression {
	return newExpr("attr", e, quoted(field), locOf(at))
}

// MapGet reads a map entry: (getItem m k loc).
func MapGet(m, key Expression, at ...source.Location) Expression {
	return newExpr("getItem", m, key, locOf(at))
}

// MapGetOr reads a map entry with a default: (getItemDefault m k d loc).
func MapGetOr(m, key, def Expression, at ...source.Location) Expression {
	return newExpr("getItemDefault", m, key, def, locOf(at))
}

func Contains(m, key Expression, at ...source.Location) Expression {
	return newExpr("contains", m, key, locOf(at))
}

func Size(e Expression, at ...source.Location) Expression {
	return newExpr("size", e, locOf(at))
}

func Keys(m Expression, at ...source.Location) Expression {
	return newExpr("keys", m, locOf(at))
}

func Values(m Expression, at ...source.Location) Expression {
	return newExpr("values", m, locOf(at))
}

func Items(m Expression, at ...source.Location) Expression {
	return newExpr("items", m, locOf(at))
}

// ---------------------------------------------------------------------------
// Execution context
// ---------------------------------------------------------------------------

func Sender() Expression           { return newExpr("sender") }
func Source() Expression           { return newExpr("source") }
func Amount() Expression           { return newExpr("amount") }
func Balance() Expression          { return newExpr("balance") }
func Now() Expression              { return newExpr("now") }
func Level() Expression            { return newExpr("level") }
func SelfAddress() Expression      { return newExpr("self_address") }
func ChainIDValue() Expression     { return newExpr("chain_id") }
func TotalVotingPower() Expression { return newExpr("total_voting_power") }

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Operators carry no location; they inherit the one of the enclosing node.

func Eq(a, b Expression) Expression  { return newExpr("eq", a, b) }
func Neq(a, b Expression) Expression { return newExpr("neq", a, b) }
func Lt(a, b Expression) Expression  { return newExpr("lt", a, b) }
func Le(a, b Expression) Expression  { return newExpr("le", a, b) }
func Gt(a, b Expression) Expression  { return newExpr("gt", a, b) }
func Ge(a, b Expression) Expression  { return newExpr("ge", a, b) }

func Add(a, b Expression) Expression  { return newExpr("add", a, b) }
func Sub(a, b Expression) Expression  { return newExpr("sub", a, b) }
func Mul(a, b Expression) Expression  { return newExpr("mul", a, b) }
func EDiv(a, b Expression) Expression { return newExpr("ediv", a, b) }
func Mod(a, b Expression) Expression  { return newExpr("mod", a, b) }

func And(a, b Expression) Expression { return newExpr("and", a, b) }
func Or(a, b Expression) Expression  { return newExpr("or", a, b) }
func Xor(a, b Expression) Expression { return newExpr("xor", a, b) }

func Lsl(a, b Expression) Expression { return newExpr("lsl", a, b) }
func Lsr(a, b Expression) Expression { return newExpr("lsr", a, b) }

func Not(a Expression) Expression   { return newExpr("not", a) }
func Neg(a Expression) Expression   { return newExpr("neg", a) }
func Abs(a Expression) Expression   { return newExpr("abs", a) }
func IsNat(a Expression) Expression { return newExpr("isNat", a) }
func ToInt(a Expression) Expression { return newExpr("toInt", a) }

// ---------------------------------------------------------------------------
// Options and variants
// ---------------------------------------------------------------------------

func IsSome(e Expression, at ...source.Location) Expression {
	return IsVariant(e, "Some", at...)
}

// IsVariant tests the branch of a variant: (isVariant e "A" loc).
func IsVariant(e Expression, branch string, at ...source.Location) Expression {
	return newExpr("isVariant", e, quoted(branch), locOf(at))
}

// OpenSome unwraps an option, failing with message (or the default error
// when message is nil): (openVariant e "Some" <msg|None> loc).
func OpenSome(e Expression, message Expression, at ...source.Location) Expression {
	return OpenVariant(e, "Some", message, at...)
}

func OpenVariant(e Expression, branch string, message Expression, at ...source.Location) Expression {
	return newExpr("openVariant", e, quoted(branch), optExpr{message}, locOf(at))
}

// ---------------------------------------------------------------------------
// Pairs
// ---------------------------------------------------------------------------

func First(e Expression, at ...source.Location) Expression {
	return newExpr("first", e, locOf(at))
}

func Second(e Expression, at ...source.Location) Expression {
	return newExpr("second", e, locOf(at))
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func Pack(e Expression, at ...source.Location) Expression {
	return newExpr("pack", e, locOf(at))
}

// Unpack decodes bytes as t: (unpack e <t> loc).
func Unpack(e Expression, t types.Type, at ...source.Location) Expression {
	return &typedExpr{Call{Atom: "unpack", Args: []sexpr.Encodable{e, t, loc(source.Pick(at))}}, types.Option(t)}
}

// Cast annotates e with t: (type_annotation e <t> loc).
func Cast(e Expression, t types.Type, at ...source.Location) Expression {
	return &typedExpr{Call{Atom: "type_annotation", Args: []sexpr.Encodable{e, t, loc(source.Pick(at))}}, t}
}

// ---------------------------------------------------------------------------
// Cryptography
// ---------------------------------------------------------------------------

func Blake2b(e Expression, at ...source.Location) Expression {
	return newExpr("blake2b", e, locOf(at))
}

func SHA256(e Expression, at ...source.Location) Expression {
	return newExpr("sha256", e, locOf(at))
}

func SHA512(e Expression, at ...source.Location) Expression {
	return newExpr("sha512", e, locOf(at))
}

func SHA3(e Expression, at ...source.Location) Expression {
	return newExpr("sha3", e, locOf(at))
}

func Keccak(e Expression, at ...source.Location) Expression {
	return newExpr("keccak", e, locOf(at))
}

func HashKey(e Expression, at ...source.Location) Expression {
	return newExpr("hash_key", e, locOf(at))
}

// CheckSignature verifies sig over data with key.
func CheckSignature(key, sig, data Expression, at ...source.Location) Expression {
	return newExpr("check_signature", key, sig, data, locOf(at))
}

// ---------------------------------------------------------------------------
// Strings and bytes
// ---------------------------------------------------------------------------

// Concat joins a list of strings or bytes: (concat loc e).
func Concat(list Expression, at ...source.Location) Expression {
	return newExpr("concat", locOf(at), list)
}

// Slice extracts length elements from offset: (slice off len e loc).
func Slice(offset, length, e Expression, at ...source.Location) Expression {
	return newExpr("slice", offset, length, e, locOf(at))
}

// ---------------------------------------------------------------------------
// Contracts and lambdas
// ---------------------------------------------------------------------------

// GetContract looks up a typed contract handle:
// (contract "ep" <t> addr loc). An empty entrypoint selects the default.
func GetContract(addr Expression, param types.Type, entrypoint string, at ...source.Location) Expression {
	var ep *string
	if entrypoint != "" {
		ep = &entrypoint
	}
	return &typedExpr{
		Call{Atom: "contract", Args: []sexpr.Encodable{optQuoted{ep}, param, addr, loc(source.Pick(at))}},
		types.Option(types.Contract(param)),
	}
}

// ImplicitAccount builds the contract handle of an implicit account.
func ImplicitAccount(keyHash Expression, at ...source.Location) Expression {
	return &typedExpr{
		Call{Atom: "implicit_account", Args: []sexpr.Encodable{keyHash, loc(source.Pick(at))}},
		types.Contract(types.Unit),
	}
}

// CallLambda applies a lambda: (call_lambda l arg loc).
func CallLambda(l, arg Expression, at ...source.Location) Expression {
	return newExpr("call_lambda", l, arg, locOf(at))
}
