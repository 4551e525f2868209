// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package contract

import (
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

// Flag is a compiler option: (name arg...).
type Flag struct {
	Name string
	Args []string
}

// Validate checks that the name and every argument are bare symbols.
func (f Flag) Validate() error {
	if err := checkName("flag", f.Name); err != nil {
		return err
	}
	for _, a := range f.Args {
		if !sexpr.IsSymbol(a) {
			return diag.Newf(diag.InvalidName, a, "argument of flag %s must be a non-empty token", f.Name)
		}
	}
	return nil
}

func (f Flag) Encode(e *sexpr.Encoder) {
	if err := f.Validate(); err != nil {
		e.Fail(err)
	}
	e.Open(f.Name)
	for _, a := range f.Args {
		e.Atom(a)
	}
	e.Close()
}

func (f Flag) String() string { return sexpr.Sprint(f) }

// Exception levels accepted by the exceptions flag.
const (
	ExceptionsFullDebug    = "full-debug"
	ExceptionsDebugMessage = "debug-message"
	ExceptionsVerifyOrLine = "verify-or-line"
	ExceptionsDefaultLine  = "default-line"
	ExceptionsLine         = "line"
	ExceptionsDefaultUnit  = "default-unit"
	ExceptionsUnit         = "unit"
)

// EraseComments drops comments from the generated code.
func EraseComments() Flag { return Flag{Name: "erase-comments"} }

// Exceptions selects how failures are reported.
func Exceptions(level string) Flag { return Flag{Name: "exceptions", Args: []string{level}} }

// Protocol selects the target protocol.
func Protocol(name string) Flag { return Flag{Name: "protocol", Args: []string{name}} }

// LazyEntryPoints makes every entry point lazy.
func LazyEntryPoints() Flag { return Flag{Name: "lazy-entry-points"} }

// ParseFlag builds a flag from its command line form "name arg...". It
// reports false when a field is not a bare symbol.
func ParseFlag(fields []string) (Flag, bool) {
	if len(fields) == 0 {
		return Flag{}, false
	}
	f := Flag{Name: fields[0], Args: append([]string(nil), fields[1:]...)}
	if f.Validate() != nil {
		return Flag{}, false
	}
	return f, true
}
