// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package sexpr

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// Boolean atoms.
const (
	True  = "True"
	False = "False"
)

// FormatBool returns the boolean atom for v.
func FormatBool(v bool) string {
	if v {
		return True
	}
	return False
}

// Quote returns s as a double-quoted string literal. Backslash, double quote
// and the control characters \n, \r, \t are escaped; everything else is
// written through unchanged.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// IsSymbol reports whether s can be written as a bare atom and read back as
// the same single token: it must be non-empty and hold no whitespace,
// parenthesis or double quote.
func IsSymbol(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' {
			return false
		}
	}
	return true
}

// NormalizeHex returns s as a lowercase 0x-prefixed hex string. It reports
// false when s is not valid hex.
func NormalizeHex(s string) (string, bool) {
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	body = strings.ToLower(body)
	if _, err := hex.DecodeString(body); err != nil {
		return s, false
	}
	return "0x" + body, true
}
