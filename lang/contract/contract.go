// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package contract assembles entry points, views and storage into the
// contract description handed to the downstream compiler.
//
// A Contract is built incrementally and serialized as a pure read of its
// current state:
//
//	(storage <e> storage_type (<t>) messages (<ep>...) flags (<f>...)
//	 privates () views (<v>...) entrypoints_layout () initial_metadata ()
//	 balance <e>)
//
// Entry points and views keep their declaration order. Names are unique;
// adding a duplicate fails and leaves the contract unchanged.
package contract

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/probechain/go-probe-dsl/lang/ast"
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
	"github.com/probechain/go-probe-dsl/lang/types"
)

// Contract is the top-level description of a smart contract.
type Contract struct {
	storageType types.Type // nil derives it from the storage value
	storage     ast.Expression
	balance     ast.Expression
	flags       []Flag
	entrypoints []*EntryPoint
	views       []*View
	ids         *ast.IDAllocator
	loc         source.Location
}

// New creates an empty contract with unit storage and a zero balance.
func New(at ...source.Location) *Contract {
	l := source.Pick(at)
	return &Contract{
		storage: ast.Unit(l),
		balance: ast.Mutez(0, l),
		ids:     ast.NewIDAllocator(),
		loc:     l,
	}
}

// IDs returns the lambda id allocator of this contract.
func (c *Contract) IDs() *ast.IDAllocator { return c.ids }

// Child creates an empty contract to be originated from c with
// ast.CreateContract. It draws lambda ids from c, so ids stay unique across
// the parent text that embeds it.
func (c *Contract) Child(at ...source.Location) *Contract {
	child := New(at...)
	child.ids = c.ids
	return child
}

// SetStorageType declares the storage type.
func (c *Contract) SetStorageType(t types.Type) *Contract {
	c.storageType = t
	return c
}

// SetStorage sets the initial storage value.
func (c *Contract) SetStorage(e ast.Expression) *Contract {
	c.storage = e
	return c
}

// SetBalance sets the initial balance.
func (c *Contract) SetBalance(e ast.Expression) *Contract {
	c.balance = e
	return c
}

// AddFlag appends a compiler flag.
func (c *Contract) AddFlag(f Flag) *Contract {
	c.flags = append(c.flags, f)
	return c
}

// AddEntrypoint appends ep. A name that is not a bare symbol or is already
// in use is rejected.
func (c *Contract) AddEntrypoint(ep *EntryPoint) error {
	if err := checkName("entry point", ep.name); err != nil {
		return err
	}
	if _, ok := c.Entrypoint(ep.name); ok {
		return diag.Newf(diag.DuplicateEntryPoint, ep.name, "entry point declared twice")
	}
	c.entrypoints = append(c.entrypoints, ep)
	return nil
}

// AddView appends v. A name that is not a bare symbol or is already in use
// is rejected.
func (c *Contract) AddView(v *View) error {
	if err := checkName("view", v.name); err != nil {
		return err
	}
	if _, ok := c.View(v.name); ok {
		return diag.Newf(diag.DuplicateView, v.name, "view declared twice")
	}
	c.views = append(c.views, v)
	return nil
}

// Entrypoint looks up an entry point by name.
func (c *Contract) Entrypoint(name string) (*EntryPoint, bool) {
	for _, ep := range c.entrypoints {
		if ep.name == name {
			return ep, true
		}
	}
	return nil, false
}

// View looks up a view by name.
func (c *Contract) View(name string) (*View, bool) {
	for _, v := range c.views {
		if v.name == name {
			return v, true
		}
	}
	return nil, false
}

// Entrypoints returns the entry points in declaration order.
func (c *Contract) Entrypoints() []*EntryPoint {
	return append([]*EntryPoint(nil), c.entrypoints...)
}

// Views returns the views in declaration order.
func (c *Contract) Views() []*View {
	return append([]*View(nil), c.views...)
}

// Flags returns the compiler flags.
func (c *Contract) Flags() []Flag {
	return append([]Flag(nil), c.flags...)
}

// StorageType returns the declared storage type, or the value type of the
// storage when none was declared.
func (c *Contract) StorageType() types.Type {
	if c.storageType != nil {
		return c.storageType
	}
	return ast.TypeOf(c.storage)
}

func (c *Contract) Encode(e *sexpr.Encoder) {
	e.Open("storage")
	c.storage.Encode(e)

	e.Atom("storage_type")
	e.Group(func() { c.StorageType().Encode(e) })

	e.Atom("messages")
	e.Group(func() {
		for _, ep := range c.entrypoints {
			ep.Encode(e)
		}
	})

	e.Atom("flags")
	e.Group(func() {
		for _, f := range c.flags {
			f.Encode(e)
		}
	})

	e.Atom("privates")
	e.Group(func() {})

	e.Atom("views")
	e.Group(func() {
		for _, v := range c.views {
			v.Encode(e)
		}
	})

	e.Atom("entrypoints_layout")
	e.Group(func() {})
	e.Atom("initial_metadata")
	e.Group(func() {})

	e.Atom("balance")
	c.balance.Encode(e)
	e.Close()
}

func (c *Contract) String() string { return sexpr.Sprint(c) }

// Serialize returns the contract text, or the first error met while
// encoding it.
func (c *Contract) Serialize() (string, error) {
	return sexpr.Serialize(c)
}

// Fingerprint returns the hex sha3-256 digest of the serialized contract.
func (c *Contract) Fingerprint() (string, error) {
	text, err := c.Serialize()
	if err != nil {
		return "", err
	}
	return Fingerprint(text), nil
}

// Fingerprint returns the hex sha3-256 digest of serialized text.
func Fingerprint(text string) string {
	h := sha3.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
