// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-probe-dsl/compiler"
	"github.com/probechain/go-probe-dsl/internal/samples"
	"github.com/probechain/go-probe-dsl/lang/contract"
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/log"
)

var (
	outDirFlag = cli.StringFlag{
		Name:  "outdir",
		Usage: "Directory for compiled payloads (default: next to each input)",
	}
	sampleFlag = cli.StringFlag{
		Name:  "sample",
		Usage: "Compile a built-in sample instead of files",
	}

	compileCommand = cli.Command{
		Action:    compileFiles,
		Name:      "compile",
		Usage:     "Compile serialized contracts to Micheline JSON",
		ArgsUsage: "<file>...",
		Flags:     []cli.Flag{outDirFlag, sampleFlag},
		Category:  "CONTRACT COMMANDS",
		Description: `
Every file holds one serialized contract. Files are compiled concurrently and
each payload is written to <file>.json. With --sample the named sample is
compiled and its payload printed.`,
	}

	replCommand = cli.Command{
		Action:   repl,
		Name:     "repl",
		Usage:    "Compile serialized values interactively",
		Category: "CONTRACT COMMANDS",
	}
)

func compilerFromContext(ctx *cli.Context) (compiler.Compiler, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return makeCompiler(cfg.Compiler)
}

func compileFiles(ctx *cli.Context) error {
	c, err := compilerFromContext(ctx)
	if err != nil {
		return err
	}
	if name := ctx.String(sampleFlag.Name); name != "" {
		k, err := samples.Build(name)
		if err != nil {
			return err
		}
		payload, err := compiler.CompileContract(context.Background(), c, k)
		if err != nil {
			return err
		}
		return writePayload(os.Stdout, payload)
	}
	if ctx.NArg() == 0 {
		return errors.New("no input files")
	}
	return compileAll(context.Background(), c, ctx.Args(), ctx.String(outDirFlag.Name))
}

// compileAll compiles files concurrently and writes each payload next to its
// input, or into outDir when set. The first failure cancels the rest.
func compileAll(ctx context.Context, c compiler.Compiler, files []string, outDir string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			text, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			payload, err := c.Compile(ctx, string(text))
			if err != nil {
				if diag.IsCompilation(err) {
					return fmt.Errorf("%s: compilation failed:\n%v", file, err)
				}
				return fmt.Errorf("%s: %w", file, err)
			}
			out := file + ".json"
			if outDir != "" {
				out = filepath.Join(outDir, filepath.Base(out))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := writePayload(f, payload); err != nil {
				return err
			}
			log.Info("Compiled contract", "file", file, "out", out, "fingerprint", contract.Fingerprint(string(text))[:16])
			return nil
		})
	}
	return g.Wait()
}

func writePayload(w io.Writer, payload compiler.Payload) error {
	var pretty interface{}
	if err := json.Unmarshal(payload, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

const (
	promptMain = "dslc> "
	promptCont = "  ... "
	replBanner = "Enter serialized values, e.g. (literal (nat 1) (\"\" -1)). :quit exits."
)

func repl(ctx *cli.Context) error {
	c, err := compilerFromContext(ctx)
	if err != nil {
		return err
	}
	fmt.Println(replBanner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	for {
		text, ok := readValue(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		switch strings.TrimSpace(text) {
		case "":
			continue
		case ":quit":
			return nil
		}
		ln.AppendHistory(strings.ReplaceAll(text, "\n", " "))

		payload, err := c.CompileValue(context.Background(), text)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		nodes, err := payload.Decode()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		for _, n := range nodes {
			fmt.Println(n.Text())
		}
	}
}

// readValue reads lines until the parentheses balance.
func readValue(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if balanced(b.String()) {
			return b.String(), true
		}
	}
}

// balanced reports whether every opening parenthesis outside string literals
// is closed.
func balanced(text string) bool {
	depth, inString, escaped := 0, false, false
	for _, r := range text {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
	}
	return depth <= 0 && !inString
}
