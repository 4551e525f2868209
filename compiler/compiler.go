// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package compiler is the boundary to the downstream contract compiler.
//
// The compiler consumes serialized contract or value text and answers with
// either a Micheline JSON payload or plain error text. Error text is returned
// to the caller verbatim as a *diag.CompilationError and never parsed here.
package compiler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/contract"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

var (
	// ErrMissingEntry is returned when a compiler script does not define
	// one of the global compile functions.
	ErrMissingEntry = errors.New("compiler script lacks entry function")

	// ErrEmptyResult is returned when the compiler produced neither a
	// payload nor error text.
	ErrEmptyResult = errors.New("compiler returned no result")
)

// Compiler turns serialized text into a Micheline payload.
type Compiler interface {
	// Compile compiles a whole serialized contract.
	Compile(ctx context.Context, text string) (Payload, error)

	// CompileValue compiles a single serialized expression.
	CompileValue(ctx context.Context, text string) (Payload, error)
}

// Payload is the compiler's success value, a JSON encoded Micheline tree.
type Payload json.RawMessage

// MarshalJSON returns the payload unchanged.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return p, nil
}

// Decode parses the payload into Micheline nodes. A top-level sequence yields
// its elements; any other value yields a single node.
func (p Payload) Decode() ([]Node, error) {
	var root Node
	if err := json.Unmarshal(p, &root); err != nil {
		return nil, err
	}
	if root.Seq != nil {
		return root.Seq, nil
	}
	return []Node{root}, nil
}

// CompileContract serializes k and hands the text to c. Serialization
// errors are returned before the compiler is consulted.
func CompileContract(ctx context.Context, c Compiler, k *contract.Contract) (Payload, error) {
	text, err := k.Serialize()
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, text)
}

// CompileExpression serializes e and compiles it as a value.
func CompileExpression(ctx context.Context, c Compiler, e ast.Expression) (Payload, error) {
	text, err := sexpr.Serialize(e)
	if err != nil {
		return nil, err
	}
	return c.CompileValue(ctx, text)
}
