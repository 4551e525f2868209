// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// OperationExpr is an expression that yields a chain operation. It does
// nothing until it is pushed onto the operation list, see Send.
type OperationExpr struct {
	Call
	loc source.Location
}

func (*OperationExpr) expressionNode() {}

func (*OperationExpr) ValueType() types.Type { return types.Operation }

// Send returns the statement that appends the operation to the pending
// operation list:
//
//	(set (operations) (cons <op> (operations) loc) loc)
//
// Building the statement has no effect on the operation itself.
func (o *OperationExpr) Send(at ...source.Location) Statement {
	l := o.loc
	if len(at) > 0 {
		l = at[0]
	}
	cons := newExpr("cons", o, Operations(), loc(l))
	return newStmt("set", Operations(), cons, loc(l))
}

func newOperation(name string, l source.Location, args ...sexpr.Encodable) *OperationExpr {
	return &OperationExpr{Call: Call{Atom: name, Args: append(args, loc(l))}, loc: l}
}

// Transfer sends amount to destination with arg as the parameter:
// (transfer arg amount dest loc).
func Transfer(arg, amount, destination Expression, at ...source.Location) *OperationExpr {
	return newOperation("transfer", source.Pick(at), arg, amount, destination)
}

// SetDelegate changes the delegate; delegate is an option of key_hash.
func SetDelegate(delegate Expression, at ...source.Location) *OperationExpr {
	return newOperation("set_delegate", source.Pick(at), delegate)
}

// embedded wraps a contract description as (contract <text>).
type embedded struct{ c sexpr.Encodable }

func (m embedded) Encode(e *sexpr.Encoder) {
	e.Open("contract")
	m.c.Encode(e)
	e.Close()
}

// CreateContract originates a new contract:
// (create_contract (contract <text>) delegate amount storage loc).
func CreateContract(contract sexpr.Encodable, delegate, amount, storage Expression, at ...source.Location) *OperationExpr {
	return newOperation("create_contract", source.Pick(at), embedded{contract}, delegate, amount, storage)
}
