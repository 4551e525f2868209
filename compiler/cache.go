// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package compiler

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/probechain/go-probe-dsl/lang/contract"
)

// DefaultCacheSize is the number of payloads a Cached compiler keeps when no
// size is configured.
const DefaultCacheSize = 256

// Cached memoizes successful results of another Compiler, keyed by the
// sha3-256 fingerprint of the input text. Errors are never cached.
type Cached struct {
	inner  Compiler
	cache  *lru.Cache
	hits   uint64
	misses uint64
}

// NewCached wraps inner with a cache holding up to size payloads.
func NewCached(inner Compiler, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Compile implements Compiler.
func (c *Cached) Compile(ctx context.Context, text string) (Payload, error) {
	return c.lookup("contract:"+contract.Fingerprint(text), func() (Payload, error) {
		return c.inner.Compile(ctx, text)
	})
}

// CompileValue implements Compiler.
func (c *Cached) CompileValue(ctx context.Context, text string) (Payload, error) {
	return c.lookup("value:"+contract.Fingerprint(text), func() (Payload, error) {
		return c.inner.CompileValue(ctx, text)
	})
}

func (c *Cached) lookup(key string, compile func() (Payload, error)) (Payload, error) {
	if cached, ok := c.cache.Get(key); ok {
		atomic.AddUint64(&c.hits, 1)
		return cached.(Payload), nil
	}
	atomic.AddUint64(&c.misses, 1)
	payload, err := compile()
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, payload)
	return payload, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *Cached) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Len returns the number of cached payloads.
func (c *Cached) Len() int { return c.cache.Len() }
