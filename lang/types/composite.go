// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package types

import (
	"sort"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
	"github.com/probechain/go-probe-dsl/lang/source"
)

// Field represents a named field inside a record or a variant.
type Field struct {
	Name string
	Type Type
}

// Composite is a record (product) or variant (sum) type.
//
// Fields keep their declaration order, which is the source of the default
// layout. Serialization lists fields by name; only the layout decides how
// they nest.
type Composite struct {
	kind   Kind
	fields []Field
	layout Layout // nil lets the compiler choose
	loc    source.Location
}

// CompositeOption configures a record or variant type.
type CompositeOption func(*compositeConfig)

type compositeConfig struct {
	layout   Layout
	explicit bool
	loc      source.Location
}

// WithLayout sets an explicit layout. It is validated against the fields.
func WithLayout(l Layout) CompositeOption {
	return func(c *compositeConfig) {
		c.layout = l
		c.explicit = true
	}
}

// WithoutLayout leaves the layout to the downstream compiler.
func WithoutLayout() CompositeOption {
	return func(c *compositeConfig) {
		c.layout = nil
		c.explicit = true
	}
}

// At attaches a source location.
func At(loc source.Location) CompositeOption {
	return func(c *compositeConfig) { c.loc = loc }
}

// NewRecord builds a record type.
func NewRecord(fields []Field, opts ...CompositeOption) (*Composite, error) {
	return newComposite(KindRecord, fields, opts)
}

// NewVariant builds a variant type.
func NewVariant(fields []Field, opts ...CompositeOption) (*Composite, error) {
	return newComposite(KindVariant, fields, opts)
}

// MustRecord is like NewRecord but panics on error.
func MustRecord(fields []Field, opts ...CompositeOption) *Composite {
	c, err := NewRecord(fields, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// MustVariant is like NewVariant but panics on error.
func MustVariant(fields []Field, opts ...CompositeOption) *Composite {
	c, err := NewVariant(fields, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func newComposite(kind Kind, fields []Field, opts []CompositeOption) (*Composite, error) {
	cfg := compositeConfig{loc: source.Unknown}
	for _, opt := range opts {
		opt(&cfg)
	}
	names := make([]string, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if !sexpr.IsSymbol(f.Name) {
			return nil, diag.Newf(diag.InvalidName, f.Name, "%s field %d is not a valid name", kind, i)
		}
		if seen[f.Name] {
			return nil, diag.Newf(diag.LayoutMismatch, f.Name, "%s field declared twice", kind)
		}
		if IsUnknown(f.Type) {
			return nil, diag.Newf(diag.UnresolvedFieldType, f.Name, "%s field has no resolved type", kind)
		}
		seen[f.Name] = true
		names[i] = f.Name
	}
	layout := cfg.layout
	if !cfg.explicit {
		layout = ComposeRightComb(names)
	} else if layout != nil {
		if err := Validate(layout, names); err != nil {
			return nil, err
		}
	}
	c := &Composite{
		kind:   kind,
		fields: make([]Field, len(fields)),
		layout: layout,
		loc:    cfg.loc,
	}
	copy(c.fields, fields)
	return c, nil
}

func (c *Composite) Kind() Kind     { return c.kind }
func (c *Composite) String() string { return sexpr.Sprint(c) }

// Fields returns the fields in declaration order.
func (c *Composite) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Names returns the field names in declaration order.
func (c *Composite) Names() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks a field up by name.
func (c *Composite) Field(name string) (Type, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Layout returns the layout, or nil when the compiler chooses.
func (c *Composite) Layout() Layout { return c.layout }

// Location returns where the type was declared.
func (c *Composite) Location() source.Location { return c.loc }

// Encode writes (record ((a "nat") (b "int")) (Some <layout>) <loc>).
func (c *Composite) Encode(e *sexpr.Encoder) {
	sorted := make([]Field, len(c.fields))
	copy(sorted, c.fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	e.Open(kindNames[c.kind])
	e.Group(func() {
		for _, f := range sorted {
			e.Open(f.Name)
			f.Type.Encode(e)
			e.Close()
		}
	})
	encodeLayout(e, c.layout)
	e.Location(c.loc)
	e.Close()
}

// Equals compares field sets and layouts. Declaration order and locations
// do not matter.
func (c *Composite) Equals(other Type) bool {
	o, ok := other.(*Composite)
	if !ok || o.kind != c.kind || len(o.fields) != len(c.fields) {
		return false
	}
	for _, f := range c.fields {
		t, ok := o.Field(f.Name)
		if !ok || !f.Type.Equals(t) {
			return false
		}
	}
	switch {
	case c.layout == nil || o.layout == nil:
		return c.layout == nil && o.layout == nil
	default:
		return c.layout.String() == o.layout.String()
	}
}
