// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-probe-dsl/compiler"
	"github.com/probechain/go-probe-dsl/log"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows the effective configuration in TOML.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	scriptFlag = cli.StringFlag{
		Name:  "script",
		Usage: "JavaScript bundle of the downstream compiler",
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cachesize",
		Usage: "Number of compiled payloads kept in memory",
		Value: compiler.DefaultCacheSize,
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Maximum duration of a single compilation (0 = unbounded)",
		Value: defaultConfig.Compiler.Timeout,
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging level: crit, error, warn, info, debug, trace",
		Value: defaultConfig.Log.Level,
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable colored log output",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// compilerConfig configures the downstream compiler runtime.
type compilerConfig struct {
	Script    string `toml:",omitempty"`
	CacheSize int
	Timeout   time.Duration
}

type serverConfig struct {
	Addr        string
	CORSOrigins []string
}

type logConfig struct {
	Level string
	Color bool
}

type dslcConfig struct {
	Compiler compilerConfig
	Server   serverConfig
	Log      logConfig
}

var defaultConfig = dslcConfig{
	Compiler: compilerConfig{
		CacheSize: compiler.DefaultCacheSize,
		Timeout:   30 * time.Second,
	},
	Server: serverConfig{
		Addr:        "127.0.0.1:8645",
		CORSOrigins: []string{"*"},
	},
	Log: logConfig{
		Level: "info",
		Color: true,
	},
}

func loadConfig(file string, cfg *dslcConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return decodeConfig(bufio.NewReader(f), file, cfg)
}

func decodeConfig(r io.Reader, name string, cfg *dslcConfig) error {
	err := tomlSettings.NewDecoder(r).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(name + ", " + err.Error())
	}
	return err
}

// makeConfig loads the defaults, then the config file, then applies flags.
func makeConfig(ctx *cli.Context) (dslcConfig, error) {
	cfg := defaultConfig
	cfg.Server.CORSOrigins = append([]string(nil), defaultConfig.Server.CORSOrigins...)

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalIsSet(scriptFlag.Name) {
		cfg.Compiler.Script = ctx.GlobalString(scriptFlag.Name)
	}
	if ctx.GlobalIsSet(cacheSizeFlag.Name) {
		cfg.Compiler.CacheSize = ctx.GlobalInt(cacheSizeFlag.Name)
	}
	if ctx.GlobalIsSet(timeoutFlag.Name) {
		cfg.Compiler.Timeout = ctx.GlobalDuration(timeoutFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Level = ctx.GlobalString(verbosityFlag.Name)
	}
	if ctx.GlobalBool(noColorFlag.Name) {
		cfg.Log.Color = false
	}
	if ctx.IsSet(addrFlag.Name) {
		cfg.Server.Addr = ctx.String(addrFlag.Name)
	}
	if ctx.IsSet(corsFlag.Name) {
		cfg.Server.CORSOrigins = splitAndTrim(ctx.String(corsFlag.Name))
	}
	return cfg, nil
}

// setupLogging installs the root log handler described by cfg.
func setupLogging(cfg logConfig) error {
	lvl, err := log.LvlFromString(cfg.Level)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.TerminalHandler(cfg.Color)))
	return nil
}

// makeCompiler loads the configured script into a cached JS compiler.
func makeCompiler(cfg compilerConfig) (compiler.Compiler, error) {
	if cfg.Script == "" {
		return nil, errors.New("no compiler script configured, use --script or [Compiler] Script")
	}
	script, err := os.ReadFile(cfg.Script)
	if err != nil {
		return nil, err
	}
	js, err := compiler.NewJSCompiler(cfg.Script, string(script))
	if err != nil {
		return nil, err
	}
	js.SetTimeout(cfg.Timeout)
	log.Debug("Loaded compiler script", "file", cfg.Script, "bytes", len(script))
	return compiler.NewCached(js, cfg.CacheSize)
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
