// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package diag defines the errors raised while building, serializing and
// compiling contracts.
//
// Construction and serialization errors describe a malformed tree: they are
// returned synchronously and are never worth retrying. Compilation errors are
// opaque text produced by the downstream compiler and are passed through
// unchanged.
package diag

import (
	"errors"
	"fmt"
)

// Code classifies a ConstructionError.
type Code int

const (
	// UnresolvedFieldType is returned when a record literal child carries no
	// value type from which the record type could be derived.
	UnresolvedFieldType Code = iota

	// LayoutMismatch is returned when an explicit layout does not cover the
	// field names of its type exactly once each.
	LayoutMismatch

	// IncompleteStatement is returned when a block statement builder is used
	// before its required blocks were supplied.
	IncompleteStatement

	// DuplicateEntryPoint is returned when two entry points share a name.
	DuplicateEntryPoint

	// DuplicateView is returned when two on-chain views share a name.
	DuplicateView

	// InvalidArity is returned when a container type receives the wrong
	// number or kind of parameters.
	InvalidArity

	// InvalidLiteral is returned by checked literal constructors when the
	// value is not well formed.
	InvalidLiteral

	// CodeAlreadySet is returned when an entry point or view body is
	// supplied twice.
	CodeAlreadySet

	// InvalidName is returned when an entry point, field or flag name cannot
	// be written as a single bare token.
	InvalidName
)

func (c Code) String() string {
	switch c {
	case UnresolvedFieldType:
		return "unresolved-field-type"
	case LayoutMismatch:
		return "layout-mismatch"
	case IncompleteStatement:
		return "incomplete-statement"
	case DuplicateEntryPoint:
		return "duplicate-entry-point"
	case DuplicateView:
		return "duplicate-view"
	case InvalidArity:
		return "invalid-arity"
	case InvalidLiteral:
		return "invalid-literal"
	case CodeAlreadySet:
		return "code-already-set"
	case InvalidName:
		return "invalid-name"
	default:
		return fmt.Sprintf("construction-error(%d)", int(c))
	}
}

// ConstructionError records a violated node invariant.
type ConstructionError struct {
	Code    Code
	Subject string // the node, field or name involved
	Message string
}

func (e *ConstructionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("construction error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("construction error [%s] for %q: %s", e.Code, e.Subject, e.Message)
}

// Is matches any ConstructionError carrying the same code, so that
// errors.Is(err, diag.ErrLayoutMismatch) works on detailed errors.
func (e *ConstructionError) Is(target error) bool {
	t, ok := target.(*ConstructionError)
	return ok && t.Code == e.Code
}

// Newf builds a ConstructionError.
func Newf(code Code, subject, format string, args ...interface{}) *ConstructionError {
	return &ConstructionError{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrUnresolvedFieldType = &ConstructionError{Code: UnresolvedFieldType}
	ErrLayoutMismatch      = &ConstructionError{Code: LayoutMismatch}
	ErrIncompleteStatement = &ConstructionError{Code: IncompleteStatement}
	ErrDuplicateEntryPoint = &ConstructionError{Code: DuplicateEntryPoint}
	ErrDuplicateView       = &ConstructionError{Code: DuplicateView}
	ErrInvalidArity        = &ConstructionError{Code: InvalidArity}
	ErrInvalidLiteral      = &ConstructionError{Code: InvalidLiteral}
	ErrCodeAlreadySet      = &ConstructionError{Code: CodeAlreadySet}
	ErrInvalidName         = &ConstructionError{Code: InvalidName}
)

// ErrUnknownType is matched by every SerializationError.
var ErrUnknownType = errors.New("unresolved placeholder type")

// SerializationError reports a placeholder type reached at serialize time.
type SerializationError struct {
	Node    string
	Message string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error in %s: %s", e.Node, e.Message)
}

func (e *SerializationError) Unwrap() error { return ErrUnknownType }

// CompilationError carries the downstream compiler's error text verbatim.
type CompilationError struct {
	Text string
}

func (e *CompilationError) Error() string { return e.Text }

// IsCompilation reports whether err came from the downstream compiler.
func IsCompilation(err error) bool {
	var ce *CompilationError
	return errors.As(err, &ce)
}
