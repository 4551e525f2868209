// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConstructionErrorIs(t *testing.T) {
	err := Newf(LayoutMismatch, "point", "field %q missing", "x")
	wrapped := fmt.Errorf("building: %w", err)

	if !errors.Is(wrapped, ErrLayoutMismatch) {
		t.Error("wrapped layout error should match ErrLayoutMismatch")
	}
	if errors.Is(wrapped, ErrDuplicateView) {
		t.Error("layout error should not match ErrDuplicateView")
	}
	want := `construction error [layout-mismatch] for "point": field "x" missing`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodeStrings(t *testing.T) {
	for code := UnresolvedFieldType; code <= InvalidName; code++ {
		if s := code.String(); strings.HasPrefix(s, "construction-error(") {
			t.Errorf("code %d has no name: %q", code, s)
		}
	}
	if got := Code(99).String(); got != "construction-error(99)" {
		t.Errorf("unknown code = %q", got)
	}
}

func TestSerializationErrorUnwraps(t *testing.T) {
	err := &SerializationError{Node: "list", Message: "element type unknown"}
	if !errors.Is(err, ErrUnknownType) {
		t.Error("SerializationError should unwrap to ErrUnknownType")
	}
}

func TestCompilationErrorVerbatim(t *testing.T) {
	text := "Error: (line 3) type mismatch\n  nat vs int"
	var err error = &CompilationError{Text: text}
	if err.Error() != text {
		t.Errorf("Error() = %q, want verbatim text", err.Error())
	}
	if !IsCompilation(fmt.Errorf("compile: %w", err)) {
		t.Error("IsCompilation should see through wrapping")
	}
	if IsCompilation(errors.New("other")) {
		t.Error("IsCompilation should reject unrelated errors")
	}
}
