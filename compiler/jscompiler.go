// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/log"
)

const (
	compileEntry      = "compile"
	compileValueEntry = "compileValue"
)

// JSCompiler runs a downstream compiler bundle inside an embedded JavaScript
// runtime. The bundle must define the globals compile(text) and
// compileValue(text). Each returns either a Micheline value or a string
// holding the error text; a thrown exception is treated as error text too.
//
// The runtime is single threaded, so calls are serialized.
type JSCompiler struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	compile goja.Callable
	value   goja.Callable
	timeout time.Duration
	log     log.Logger
}

// NewJSCompiler evaluates script and binds its entry functions. The name is
// used in JavaScript stack traces and log output.
func NewJSCompiler(name, script string) (*JSCompiler, error) {
	vm := goja.New()
	if _, err := vm.RunScript(name, script); err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	c := &JSCompiler{vm: vm, log: log.New("compiler", name)}
	for _, entry := range []struct {
		name string
		dst  *goja.Callable
	}{{compileEntry, &c.compile}, {compileValueEntry, &c.value}} {
		fn, ok := goja.AssertFunction(vm.Get(entry.name))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEntry, entry.name)
		}
		*entry.dst = fn
	}
	return c, nil
}

// SetTimeout bounds every call. Zero means calls are only bounded by their
// context.
func (c *JSCompiler) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Compile implements Compiler.
func (c *JSCompiler) Compile(ctx context.Context, text string) (Payload, error) {
	return c.call(ctx, compileEntry, c.compile, text)
}

// CompileValue implements Compiler.
func (c *JSCompiler) CompileValue(ctx context.Context, text string) (Payload, error) {
	return c.call(ctx, compileValueEntry, c.value, text)
}

func (c *JSCompiler) call(ctx context.Context, entry string, fn goja.Callable, text string) (Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	id := uuid.New().String()
	start := time.Now()
	c.log.Debug("Compiling", "id", id, "entry", entry, "bytes", len(text))

	// Interrupt the runtime if the context ends while the script runs.
	var (
		done = make(chan struct{})
		wg   sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			c.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	res, err := fn(goja.Undefined(), c.vm.ToValue(text))
	close(done)
	wg.Wait()
	c.vm.ClearInterrupt()

	payload, err := c.result(ctx, res, err)
	if err != nil {
		if diag.IsCompilation(err) {
			c.log.Debug("Compilation rejected", "id", id, "elapsed", time.Since(start))
		} else {
			c.log.Warn("Compiler call failed", "id", id, "entry", entry, "err", err)
		}
		return nil, err
	}
	c.log.Debug("Compiled", "id", id, "payload", len(payload), "elapsed", time.Since(start))
	return payload, nil
}

func (c *JSCompiler) result(ctx context.Context, res goja.Value, err error) (Payload, error) {
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return nil, err
		}
		var exc *goja.Exception
		if errors.As(err, &exc) {
			return nil, &diag.CompilationError{Text: exc.Value().String()}
		}
		return nil, err
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return nil, ErrEmptyResult
	}
	v := res.Export()
	if s, ok := v.(string); ok {
		return nil, &diag.CompilationError{Text: s}
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return Payload(blob), nil
}
