// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Handler decides where and how a Record is written.
type Handler interface {
	Log(r *Record) error
}

type funcHandler func(r *Record) error

func (h funcHandler) Log(r *Record) error { return h(r) }

// FuncHandler returns a Handler that logs records with fn.
func FuncHandler(fn func(r *Record) error) Handler { return funcHandler(fn) }

// DiscardHandler drops every record.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}

// StreamHandler writes records to wr formatted by fmtr. Writes are
// serialized.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		b := fmtr.Format(r)
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(b)
		return err
	})
}

// LvlFilterHandler passes records at maxLvl or more severe to h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl <= maxLvl {
			return h.Log(r)
		}
		return nil
	})
}

// CallerFileHandler adds the call site as "caller"="file.go:42".
func CallerFileHandler(h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		r.Ctx = append(r.Ctx, "caller", fmt.Sprint(r.Call))
		return h.Log(r)
	})
}

// MultiHandler dispatches every record to all handlers.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			// Keep going if one handler fails.
			h.Log(r)
		}
		return nil
	})
}

// TerminalHandler writes to stderr, in color when stderr is a terminal.
func TerminalHandler(color bool) Handler {
	usecolor := color && isatty.IsTerminal(os.Stderr.Fd())
	var out io.Writer = os.Stderr
	if usecolor {
		out = colorable.NewColorableStderr()
	}
	return StreamHandler(out, TerminalFormat(usecolor))
}
