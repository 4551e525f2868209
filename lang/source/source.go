// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package source defines the provenance tag attached to DSL nodes.
//
// A Location is purely diagnostic: the downstream compiler echoes it back in
// error messages, and it never changes what a node means. Constructors never
// look at the call stack on their own; callers either pass a Location built
// with At, capture one explicitly with Caller, or get Unknown.
package source

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/go-stack/stack"
)

// Location tracks where a node was built.
type Location struct {
	File string
	Line int
}

// Unknown is the location carried by nodes built without provenance.
var Unknown = Location{Line: -1}

// At returns the location file:line.
func At(file string, line int) Location {
	return Location{File: file, Line: line}
}

// Caller captures the location of the function skip frames above the caller
// of Caller. Caller(0) returns the location of the line calling Caller.
func Caller(skip int) Location {
	c := stack.Caller(skip + 1)
	line, err := strconv.Atoi(fmt.Sprintf("%d", c))
	if err != nil {
		return Unknown
	}
	return Location{File: filepath.Base(fmt.Sprintf("%s", c)), Line: line}
}

// Pick resolves an optional trailing location argument.
func Pick(at []Location) Location {
	if len(at) == 0 {
		return Unknown
	}
	return at[0]
}

// IsUnknown reports whether l carries no provenance.
func (l Location) IsUnknown() bool {
	return l.File == "" && l.Line < 0
}

func (l Location) String() string {
	if l.IsUnknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
