// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testHandler(buf *bytes.Buffer, lvl Lvl) Handler {
	return LvlFilterHandler(lvl, StreamHandler(buf, LogfmtFormat()))
}

func TestLogfmt(t *testing.T) {
	var buf bytes.Buffer
	l := New("component", "compiler")
	l.SetHandler(testHandler(&buf, LvlInfo))

	l.Info("compiled", "id", "abc", "bytes", 12, "cached", true)
	out := buf.String()
	for _, want := range []string{"lvl=info", "msg=compiled", "component=compiler", "id=abc", "bytes=12", "cached=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(testHandler(&buf, LvlWarn))

	l.Info("hidden")
	l.Debug("hidden")
	l.Error("shown", "err", errors.New("boom"))
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("filtered records were written: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "err=boom") {
		t.Fatalf("error record missing: %q", buf.String())
	}
}

func TestOddContext(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(testHandler(&buf, LvlInfo))
	l.Info("odd", "lonely")
	if !strings.Contains(buf.String(), "lonely=nil") || !strings.Contains(buf.String(), errorKey) {
		t.Fatalf("odd context not normalized: %q", buf.String())
	}
}

func TestQuoting(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(testHandler(&buf, LvlInfo))
	l.Info("q", "text", `a "b" c`, "empty", "")
	out := buf.String()
	if !strings.Contains(out, `text="a \"b\" c"`) || !strings.Contains(out, `empty=""`) {
		t.Fatalf("bad quoting: %q", out)
	}
}

func TestCallerFileHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(CallerFileHandler(StreamHandler(&buf, LogfmtFormat())))
	l.Warn("where")
	if !strings.Contains(buf.String(), "caller=log_test.go:") {
		t.Fatalf("call site missing: %q", buf.String())
	}
}

func TestTerminalFormat(t *testing.T) {
	r := &Record{Lvl: LvlWarn, Msg: "short", Ctx: []interface{}{"k", "v"}}
	plain := string(TerminalFormat(false).Format(r))
	if !strings.HasPrefix(plain, "WARN [") || !strings.Contains(plain, "k=v") {
		t.Fatalf("unexpected plain output %q", plain)
	}
	colored := string(TerminalFormat(true).Format(r))
	if !strings.Contains(colored, "\x1b[33m") {
		t.Fatalf("expected color codes in %q", colored)
	}
}

func TestLvlFromString(t *testing.T) {
	for s, want := range map[string]Lvl{"trace": LvlTrace, "DEBUG": LvlDebug, "info": LvlInfo, "eror": LvlError} {
		got, err := LvlFromString(s)
		if err != nil || got != want {
			t.Errorf("LvlFromString(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := LvlFromString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestChildInheritsHandler(t *testing.T) {
	var buf bytes.Buffer
	parent := New("a", 1)
	parent.SetHandler(testHandler(&buf, LvlInfo))
	parent.New("b", 2).Info("child")
	if !strings.Contains(buf.String(), "a=1 b=2") {
		t.Fatalf("context not inherited: %q", buf.String())
	}
}
