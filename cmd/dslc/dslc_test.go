// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probechain/go-probe-dsl/compiler"
	"github.com/probechain/go-probe-dsl/internal/samples"
	"github.com/probechain/go-probe-dsl/lang/diag"
)

func TestDecodeConfig(t *testing.T) {
	cfg := defaultConfig
	input := `
[Compiler]
Script = "bundle.js"
CacheSize = 16

[Server]
Addr = "0.0.0.0:9000"
CORSOrigins = ["https://example.org"]

[Log]
Level = "debug"
Color = false
`
	require.NoError(t, decodeConfig(strings.NewReader(input), "test.toml", &cfg))
	assert.Equal(t, "bundle.js", cfg.Compiler.Script)
	assert.Equal(t, 16, cfg.Compiler.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.Compiler.Timeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Color)
}

func TestDecodeConfigUnknownField(t *testing.T) {
	cfg := defaultConfig
	err := decodeConfig(strings.NewReader("[Compiler]\nScripts = \"x\"\n"), "bad.toml", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Scripts")
}

func TestConfigRoundTrip(t *testing.T) {
	out, err := tomlSettings.Marshal(&defaultConfig)
	require.NoError(t, err)

	var cfg dslcConfig
	require.NoError(t, decodeConfig(bytes.NewReader(out), "dump.toml", &cfg))
	assert.Equal(t, defaultConfig, cfg)
}

func TestMakeCompilerNeedsScript(t *testing.T) {
	_, err := makeCompiler(compilerConfig{})
	assert.Error(t, err)
}

func TestMakeCompilerFromFile(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bundle.js")
	src := `function compile(t) { return [{prim: "unit"}]; } function compileValue(t) { return {int: "1"}; }`
	require.NoError(t, os.WriteFile(script, []byte(src), 0644))

	c, err := makeCompiler(compilerConfig{Script: script, CacheSize: 2, Timeout: time.Second})
	require.NoError(t, err)
	payload, err := c.CompileValue(context.Background(), "(literal (nat 1) (\"\" -1))")
	require.NoError(t, err)
	assert.JSONEq(t, `{"int":"1"}`, string(payload))
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	c, err := samples.Build("counter")
	require.NoError(t, err)
	in := filepath.Join(dir, "counter.sexp")
	require.NoError(t, os.WriteFile(in, []byte(c.String()), 0644))

	require.NoError(t, compileAll(context.Background(), fakeCompiler{}, []string{in}, ""))
	out, err := os.ReadFile(in + ".json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"prim":"parameter"}]`, string(out))

	bad := filepath.Join(dir, "bad.sexp")
	require.NoError(t, os.WriteFile(bad, []byte("bad"), 0644))
	err = compileAll(context.Background(), fakeCompiler{}, []string{bad}, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error near bad")
}

func TestInspect(t *testing.T) {
	c, err := samples.Build("ledger")
	require.NoError(t, err)

	members, err := contractMembers(c.String())
	require.NoError(t, err)
	var names []string
	for _, m := range members {
		names = append(names, m.kind+":"+m.name)
	}
	assert.Equal(t, []string{
		"entrypoint:transfer", "entrypoint:mint", "entrypoint:airdrop", "entrypoint:admin",
		"view:getBalance", "view:getTotalSupply",
	}, names)
	assert.Equal(t, "True", members[2].lazy)
	assert.Equal(t, "False", members[5].hasParam)

	var buf bytes.Buffer
	require.NoError(t, inspectText(&buf, c.String()))
	assert.Contains(t, buf.String(), "STATEMENTS")
	assert.Contains(t, buf.String(), "getTotalSupply")

	_, err = contractMembers(`(literal (nat 1) ("" -1))`)
	assert.Error(t, err)
}

func TestInspectCountsUserStatements(t *testing.T) {
	text := `(storage (literal (unit) ("" -1)) messages (` +
		`(check True False False True ("" -1) (` +
		`(set_type (params ("" -1)) "nat" ("" -1)) ` +
		`(ifBlock (literal (bool True) ("" -1)) () ("" -1)) (elseBlock ()) ` +
		`(failwith (literal (unit) ("" -1)) ("" -1))))) ` +
		`views ((onchain "peek" True ("" -1) None ((set_type (params ("" -1)) "nat" ("" -1)) (result (data) ("" -1))))))`
	members, err := contractMembers(text)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "2", members[0].statement)
	assert.Equal(t, "1", members[1].statement)
}

func TestBalanced(t *testing.T) {
	for text, want := range map[string]bool{
		`(literal (nat 1) ("" -1))`: true,
		`(literal (string "(") `:    false,
		`(literal (string ")"`:      false,
		`(a (b)`:                    false,
		`x`:                         true,
		`"open`:                     false,
	} {
		assert.Equal(t, want, balanced(text), text)
	}
}

// fakeCompiler accepts contract text and rejects "bad" with compiler text.
type fakeCompiler struct{}

func (fakeCompiler) Compile(_ context.Context, text string) (compiler.Payload, error) {
	if text == "bad" {
		return nil, &diag.CompilationError{Text: "syntax error near bad"}
	}
	return compiler.Payload(`[{"prim":"parameter"}]`), nil
}

func (fakeCompiler) CompileValue(_ context.Context, text string) (compiler.Payload, error) {
	if text == "slow" {
		return nil, context.DeadlineExceeded
	}
	return fakeCompiler{}.Compile(context.Background(), text)
}

func TestHTTPHandler(t *testing.T) {
	srv := httptest.NewServer(newHandler(fakeCompiler{}, []string{"https://example.org"}))
	defer srv.Close()

	post := func(path, body string) (*http.Response, map[string]interface{}) {
		resp, err := http.Post(srv.URL+path, "text/plain", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]interface{}
		if resp.StatusCode != http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		}
		return resp, out
	}

	resp, _ := post("/compile", "(storage ...)")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := post("/compile", "bad")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "syntax error near bad", out["error"])
	assert.Equal(t, true, out["compilation"])

	resp, _ = post("/compile-value", "slow")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	resp, _ = post("/compile", "  ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	get, err := http.Get(srv.URL + "/samples/counter")
	require.NoError(t, err)
	body := new(bytes.Buffer)
	body.ReadFrom(get.Body)
	get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.True(t, strings.HasPrefix(body.String(), "(storage "))

	get, err = http.Get(srv.URL + "/samples/nope")
	require.NoError(t, err)
	get.Body.Close()
	assert.Equal(t, http.StatusNotFound, get.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/samples", nil)
	req.Header.Set("Origin", "https://example.org")
	get, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	get.Body.Close()
	assert.Equal(t, "https://example.org", get.Header.Get("Access-Control-Allow-Origin"))
}

func TestHTTPBodyErrors(t *testing.T) {
	h := newHandler(fakeCompiler{}, nil)

	big := strings.NewReader(strings.Repeat("x", maxRequestSize+1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compile", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	broken := iotest.ErrReader(errors.New("connection reset"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compile", broken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection reset")
}
