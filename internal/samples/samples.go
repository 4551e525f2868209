// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package samples holds a registry of contracts written with the DSL. They
// are used by the dslc command and as end-to-end fixtures in tests.
package samples

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/probechain/go-probe-dsl/lang/contract"
)

// ErrUnknownSample is returned by Build for unregistered names.
var ErrUnknownSample = errors.New("unknown sample")

// Sample describes one registered contract.
type Sample struct {
	Name        string
	Description string
	Build       func() (*contract.Contract, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Sample)
)

// Register adds s to the registry. Registering a name twice panics.
func Register(s Sample) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[s.Name]; ok {
		panic(fmt.Sprintf("sample %q registered twice", s.Name))
	}
	registry[s.Name] = s
}

// Names returns the registered sample names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the sample registered under name.
func Get(name string) (Sample, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// Build constructs a fresh instance of the named contract.
func Build(name string) (*contract.Contract, error) {
	s, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSample, name)
	}
	return s.Build()
}

// assemble adds entry points and views to c, stopping at the first error.
func assemble(c *contract.Contract, eps []*contract.EntryPoint, views ...*contract.View) (*contract.Contract, error) {
	for _, ep := range eps {
		if err := c.AddEntrypoint(ep); err != nil {
			return nil, err
		}
	}
	for _, v := range views {
		if err := c.AddView(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}
