// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package compiler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Node is one Micheline node in its standard JSON encoding. Exactly one of
// Prim, Int, String, Bytes or Seq is set.
type Node struct {
	Prim   string   `json:"prim,omitempty"`
	Args   []Node   `json:"args,omitempty"`
	Annots []string `json:"annots,omitempty"`
	Int    string   `json:"int,omitempty"`
	String string   `json:"string,omitempty"`
	Bytes  string   `json:"bytes,omitempty"`

	// Seq holds the elements of a sequence, which is encoded as a bare
	// JSON array.
	Seq []Node `json:"-"`
}

type plainNode Node

// UnmarshalJSON accepts both object nodes and sequences.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		seq := []Node{}
		if err := json.Unmarshal(data, &seq); err != nil {
			return err
		}
		*n = Node{Seq: seq}
		return nil
	}
	var p plainNode
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// MarshalJSON writes sequences as arrays and everything else as objects.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Seq != nil {
		return json.Marshal(n.Seq)
	}
	return json.Marshal(plainNode(n))
}

// IsSeq reports whether n is a sequence.
func (n Node) IsSeq() bool { return n.Seq != nil }

// Text renders n in Micheline concrete syntax, e.g. (pair nat string) or
// { DROP ; NIL operation }.
func (n Node) Text() string {
	var b strings.Builder
	n.write(&b, false)
	return b.String()
}

func (n Node) write(b *strings.Builder, nested bool) {
	switch {
	case n.Seq != nil:
		b.WriteString("{")
		for i, c := range n.Seq {
			if i > 0 {
				b.WriteString(" ;")
			}
			b.WriteByte(' ')
			c.write(b, false)
		}
		b.WriteString(" }")
	case n.Int != "":
		b.WriteString(n.Int)
	case n.Bytes != "":
		b.WriteString("0x")
		b.WriteString(n.Bytes)
	case n.Prim != "":
		wrap := nested && (len(n.Args) > 0 || len(n.Annots) > 0)
		if wrap {
			b.WriteByte('(')
		}
		b.WriteString(n.Prim)
		for _, a := range n.Annots {
			b.WriteByte(' ')
			b.WriteString(a)
		}
		for _, a := range n.Args {
			b.WriteByte(' ')
			a.write(b, true)
		}
		if wrap {
			b.WriteByte(')')
		}
	default:
		b.WriteString(strconv.Quote(n.String))
	}
}
