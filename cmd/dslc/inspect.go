// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-probe-dsl/internal/samples"
	"github.com/probechain/go-probe-dsl/lang/sexpr"
)

var (
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "Print the Go value of the contract instead of its text",
	}

	samplesCommand = cli.Command{
		Action:    listSamples,
		Name:      "samples",
		Usage:     "List or serialize the built-in sample contracts",
		ArgsUsage: "[name]",
		Flags:     []cli.Flag{dumpFlag},
		Category:  "CONTRACT COMMANDS",
		Description: `
Without arguments the command lists the registered samples. With a name it
prints the serialized contract, or its Go structure with --dump.`,
	}

	inspectCommand = cli.Command{
		Action:    inspect,
		Name:      "inspect",
		Usage:     "Show the entry points and views of a serialized contract",
		ArgsUsage: "<file>",
		Category:  "CONTRACT COMMANDS",
	}
)

func listSamples(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Description"})
		for _, name := range samples.Names() {
			s, _ := samples.Get(name)
			table.Append([]string{s.Name, s.Description})
		}
		table.Render()
		return nil
	}
	c, err := samples.Build(ctx.Args().First())
	if err != nil {
		return err
	}
	if ctx.Bool(dumpFlag.Name) {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Fdump(os.Stdout, c)
		return nil
	}
	text, err := c.Serialize()
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func inspect(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("inspect takes exactly one file")
	}
	text, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	return inspectText(os.Stdout, string(text))
}

// member is one entry point or view of a serialized contract.
type member struct {
	kind, name          string
	originate, lazy     string
	hasParam, statement string
}

// contractMembers extracts the entry points and views from contract text.
func contractMembers(text string) ([]member, error) {
	node, err := sexpr.ParseOne(text)
	if err != nil {
		return nil, err
	}
	root, ok := node.(*sexpr.List)
	if !ok || root.Head() != "storage" {
		return nil, errors.New("not a serialized contract")
	}
	var out []member
	if msgs, ok := root.Find("messages"); ok {
		for _, it := range items(msgs) {
			// (name originate lazy lazyNoCode hasParam loc (stmts))
			if len(it.Items) != 7 {
				return nil, fmt.Errorf("malformed entry point %s", it.Head())
			}
			out = append(out, member{
				kind:      "entrypoint",
				name:      it.Head(),
				originate: it.Items[1].String(),
				lazy:      it.Items[2].String(),
				hasParam:  it.Items[4].String(),
				statement: fmt.Sprint(statements(it.Items[6])),
			})
		}
	}
	if views, ok := root.Find("views"); ok {
		for _, it := range items(views) {
			// (onchain "name" hasParam loc desc (stmts))
			if len(it.Items) != 6 {
				return nil, errors.New("malformed view")
			}
			name, _ := it.Items[1].(*sexpr.String)
			if name == nil {
				return nil, errors.New("view without name")
			}
			out = append(out, member{
				kind:      "view",
				name:      name.Value,
				originate: "-",
				lazy:      "-",
				hasParam:  it.Items[2].String(),
				statement: fmt.Sprint(statements(it.Items[5])),
			})
		}
	}
	return out, nil
}

// items returns the list children of n, skipping anything else.
func items(n sexpr.Node) []*sexpr.List {
	l, ok := n.(*sexpr.List)
	if !ok {
		return nil
	}
	out := make([]*sexpr.List, 0, len(l.Items))
	for _, it := range l.Items {
		if sub, ok := it.(*sexpr.List); ok {
			out = append(out, sub)
		}
	}
	return out
}

// statements counts the top level statements of a body as written by the
// user. The parameter type annotation is generated, and an else branch is
// part of the ifBlock before it.
func statements(body sexpr.Node) int {
	n := 0
	for _, it := range items(body) {
		switch it.Head() {
		case "set_type", "elseBlock":
		default:
			n++
		}
	}
	return n
}

func inspectText(w io.Writer, text string) error {
	members, err := contractMembers(text)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "Name", "Originate", "Lazy", "Param", "Statements"})
	for _, m := range members {
		table.Append([]string{m.kind, m.name, m.originate, m.lazy, m.hasParam, m.statement})
	}
	table.Render()
	return nil
}
