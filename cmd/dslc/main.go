// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// dslc builds, inspects and compiles contracts written with the DSL.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"
)

const clientIdentifier = "dslc"

var app = newApp()

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "smart-contract DSL toolchain"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		configFileFlag,
		scriptFlag,
		cacheSizeFlag,
		timeoutFlag,
		verbosityFlag,
		noColorFlag,
	}
	app.Commands = []cli.Command{
		samplesCommand,
		compileCommand,
		inspectCommand,
		replCommand,
		serveCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		return setupLogging(cfg.Log)
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fatalf("%v", err)
	}
}

// fatalf prints the message in red to stderr and exits.
func fatalf(format string, args ...interface{}) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintln(os.Stderr, red("Fatal: ")+fmt.Sprintf(format, args...))
	os.Exit(1)
}
