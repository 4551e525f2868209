// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import "github.com/probechain/go-probe-dsl/lang/source"

// Accessor adds field and key access to any expression. The wrapped node's
// own methods stay reachable through the embedded Expression; Get and At
// only build new nodes.
//
//	Access(Storage()).Get("ledger").At(Sender()).Get("balance")
//
// produces (attr (getItem (attr (data) "ledger" loc) (sender) loc) "balance" loc).
type Accessor struct {
	Expression
}

// Access wraps e. Wrapping an Accessor returns it unchanged.
func Access(e Expression) Accessor {
	if a, ok := e.(Accessor); ok {
		return a
	}
	return Accessor{e}
}

// Get reads field from the wrapped record.
func (a Accessor) Get(field string, at ...source.Location) Accessor {
	return Accessor{Property(a.Expression, field, at...)}
}

// At reads key from the wrapped map.
func (a Accessor) At(key Expression, at ...source.Location) Accessor {
	return Accessor{MapGet(a.Expression, key, at...)}
}

// Unwrap returns the wrapped expression.
func (a Accessor) Unwrap() Expression { return a.Expression }
