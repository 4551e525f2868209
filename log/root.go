// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package log

var root = &logger{ctx: []interface{}{}, h: new(swapHandler)}

func init() {
	root.SetHandler(DiscardHandler())
}

// New returns a logger derived from the root logger.
func New(ctx ...interface{}) Logger {
	return root.New(ctx...)
}

// Root returns the root logger.
func Root() Logger {
	return root
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.write so
// runtime.Caller(2) always refers to the call site in client code.

func Trace(msg string, ctx ...interface{}) { root.write(msg, LvlTrace, ctx, skipLevel) }
func Debug(msg string, ctx ...interface{}) { root.write(msg, LvlDebug, ctx, skipLevel) }
func Info(msg string, ctx ...interface{})  { root.write(msg, LvlInfo, ctx, skipLevel) }
func Warn(msg string, ctx ...interface{})  { root.write(msg, LvlWarn, ctx, skipLevel) }
func Error(msg string, ctx ...interface{}) { root.write(msg, LvlError, ctx, skipLevel) }
func Crit(msg string, ctx ...interface{})  { root.write(msg, LvlCrit, ctx, skipLevel) }
