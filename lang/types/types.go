// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package types defines the contract data types of the DSL.
//
// Design principles:
//   - Three factories: simple atoms, parameterised containers, and composite
//     records/variants that carry a layout.
//   - Every type serializes to a complete parenthesised token tree; simple
//     types are the quoted atom ("nat"), containers are (map "nat" "string").
//   - Unknown is a placeholder only. Serializing it is an error, and the
//     factories refuse it as a parameter.
package types

import (
	"fmt"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

// Kind categorizes the fundamental shape of a type.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnit
	KindNat
	KindInt
	KindMutez
	KindString
	KindBool
	KindAddress
	KindTimestamp
	KindBytes
	KindKey
	KindKeyHash
	KindSignature
	KindChainID
	KindOperation
	KindNever
	KindBLS12381G1
	KindBLS12381G2
	KindBLS12381Fr
	KindChest
	KindChestKey
	KindOpaque // a simple atom this package has no name for

	KindList
	KindSet
	KindOption
	KindContract
	KindTicket
	KindMap
	KindBigMap
	KindPair
	KindLambda
	KindSaplingState
	KindSaplingTransaction

	KindRecord
	KindVariant
)

var kindNames = [...]string{
	KindUnknown:            "unknown",
	KindUnit:               "unit",
	KindNat:                "nat",
	KindInt:                "int",
	KindMutez:              "mutez",
	KindString:             "string",
	KindBool:               "bool",
	KindAddress:            "address",
	KindTimestamp:          "timestamp",
	KindBytes:              "bytes",
	KindKey:                "key",
	KindKeyHash:            "key_hash",
	KindSignature:          "signature",
	KindChainID:            "chain_id",
	KindOperation:          "operation",
	KindNever:              "never",
	KindBLS12381G1:         "bls12_381_g1",
	KindBLS12381G2:         "bls12_381_g2",
	KindBLS12381Fr:         "bls12_381_fr",
	KindChest:              "chest",
	KindChestKey:           "chest_key",
	KindOpaque:             "opaque",
	KindList:               "list",
	KindSet:                "set",
	KindOption:             "option",
	KindContract:           "contract",
	KindTicket:             "ticket",
	KindMap:                "map",
	KindBigMap:             "big_map",
	KindPair:               "pair",
	KindLambda:             "lambda",
	KindSaplingState:       "sapling_state",
	KindSaplingTransaction: "sapling_transaction",
	KindRecord:             "record",
	KindVariant:            "variant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsSimple reports whether k is an atomic type.
func (k Kind) IsSimple() bool { return k > KindUnknown && k <= KindOpaque }

// IsContainer reports whether k is a parameterised container.
func (k Kind) IsContainer() bool { return k >= KindList && k <= KindSaplingTransaction }

// IsComposite reports whether k is a record or a variant.
func (k Kind) IsComposite() bool { return k == KindRecord || k == KindVariant }

// kindByAtom maps serialized atoms back to kinds.
var kindByAtom = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if Kind(k) != KindOpaque && Kind(k) != KindUnknown {
			m[name] = Kind(k)
		}
	}
	return m
}()

// Type is the interface that all contract types implement.
type Type interface {
	sexpr.Encodable

	// Kind returns the fundamental category of this type.
	Kind() Kind

	// String returns the serialized form. It never fails; an Unknown
	// anywhere in the tree is rendered as its sentinel.
	String() string

	// Equals reports whether two types are structurally identical.
	Equals(other Type) bool
}

// ---- Simple types ----------------------------------------------------------

// simpleType is the concrete implementation for all atomic types.
type simpleType struct {
	kind Kind
	atom string
}

func (s *simpleType) Kind() Kind              { return s.kind }
func (s *simpleType) String() string          { return sexpr.Sprint(s) }
func (s *simpleType) Encode(e *sexpr.Encoder) { e.Quote(s.atom) }

// Atom returns the type name.
func (s *simpleType) Atom() string { return s.atom }

func (s *simpleType) Equals(other Type) bool {
	o, ok := other.(*simpleType)
	return ok && o.atom == s.atom
}

func newSimple(k Kind) Type { return &simpleType{kind: k, atom: kindNames[k]} }

// Pre-allocated singletons for all simple types.
var (
	Unit       = newSimple(KindUnit)
	Nat        = newSimple(KindNat)
	Int        = newSimple(KindInt)
	Mutez      = newSimple(KindMutez)
	String     = newSimple(KindString)
	Bool       = newSimple(KindBool)
	Address    = newSimple(KindAddress)
	Timestamp  = newSimple(KindTimestamp)
	Bytes      = newSimple(KindBytes)
	Key        = newSimple(KindKey)
	KeyHash    = newSimple(KindKeyHash)
	Signature  = newSimple(KindSignature)
	ChainID    = newSimple(KindChainID)
	Operation  = newSimple(KindOperation)
	Never      = newSimple(KindNever)
	BLS12381G1 = newSimple(KindBLS12381G1)
	BLS12381G2 = newSimple(KindBLS12381G2)
	BLS12381Fr = newSimple(KindBLS12381Fr)
	Chest      = newSimple(KindChest)
	ChestKey   = newSimple(KindChestKey)
)

var simpleByKind = map[Kind]Type{
	KindUnit: Unit, KindNat: Nat, KindInt: Int, KindMutez: Mutez,
	KindString: String, KindBool: Bool, KindAddress: Address,
	KindTimestamp: Timestamp, KindBytes: Bytes, KindKey: Key,
	KindKeyHash: KeyHash, KindSignature: Signature, KindChainID: ChainID,
	KindOperation: Operation, KindNever: Never, KindBLS12381G1: BLS12381G1,
	KindBLS12381G2: BLS12381G2, KindBLS12381Fr: BLS12381Fr, KindChest: Chest,
	KindChestKey: ChestKey,
}

// Simple returns the atomic type named atom. Atoms this package does not
// know are kept verbatim with KindOpaque so newer protocol types can still be
// expressed.
func Simple(atom string) Type {
	if k, ok := kindByAtom[atom]; ok {
		if t, ok := simpleByKind[k]; ok {
			return t
		}
	}
	return &simpleType{kind: KindOpaque, atom: atom}
}

// ---- Unknown ---------------------------------------------------------------

type unknownType struct{}

// Unknown is the placeholder for a type that has not been resolved. It must
// never reach the downstream compiler.
var Unknown Type = unknownType{}

func (unknownType) Kind() Kind     { return KindUnknown }
func (unknownType) String() string { return "(unknown)" }

func (unknownType) Equals(other Type) bool {
	return other != nil && other.Kind() == KindUnknown
}

func (unknownType) Encode(e *sexpr.Encoder) {
	e.Fail(&diag.SerializationError{Node: "type", Message: "placeholder type was never resolved"})
	e.Open("unknown")
	e.Close()
}

// IsUnknown reports whether t is missing or the Unknown placeholder.
func IsUnknown(t Type) bool {
	return t == nil || t.Kind() == KindUnknown
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}
