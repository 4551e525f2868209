// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-probe-dsl/compiler"
	"github.com/probechain/go-probe-dsl/internal/samples"
	"github.com/probechain/go-probe-dsl/lang/diag"
	"github.com/probechain/go-probe-dsl/log"
)

const maxRequestSize = 4 * 1024 * 1024

var (
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "HTTP listen address",
	}
	corsFlag = cli.StringFlag{
		Name:  "cors",
		Usage: "Comma separated list of origins allowed to call the server",
	}

	serveCommand = cli.Command{
		Action:   serve,
		Name:     "serve",
		Usage:    "Serve the compiler over HTTP",
		Flags:    []cli.Flag{addrFlag, corsFlag},
		Category: "CONTRACT COMMANDS",
		Description: `
Endpoints:
  POST /compile          body: serialized contract
  POST /compile-value    body: serialized value
  GET  /samples          registered sample names
  GET  /samples/:name    serialized sample contract`,
	}
)

func serve(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	c, err := makeCompiler(cfg.Compiler)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:     newHandler(c, cfg.Server.CORSOrigins),
		ReadTimeout: 30 * time.Second,
	}
	log.Info("HTTP server started", "endpoint", "http://"+listener.Addr().String(), "cors", strings.Join(cfg.Server.CORSOrigins, ","))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(listener) }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case err := <-errc:
		return err
	case <-sigc:
		log.Info("Got interrupt, shutting down...")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler routes the HTTP API to c.
func newHandler(c compiler.Compiler, origins []string) http.Handler {
	api := &compileAPI{compiler: c, log: log.New("module", "http")}
	router := httprouter.New()
	router.POST("/compile", api.compile)
	router.POST("/compile-value", api.compileValue)
	router.GET("/samples", api.listSamples)
	router.GET("/samples/:name", api.sample)

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	}).Handler(router)
}

type compileAPI struct {
	compiler compiler.Compiler
	log      log.Logger
}

// errorResponse is the body of failed requests. Compilation is set when Error
// is the compiler's own text.
type errorResponse struct {
	Error       string `json:"error"`
	Compilation bool   `json:"compilation,omitempty"`
}

func (api *compileAPI) compile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.run(w, r, api.compiler.Compile)
}

func (api *compileAPI) compileValue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.run(w, r, api.compiler.CompileValue)
}

func (api *compileAPI) run(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (compiler.Payload, error)) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty request body"})
		return
	}
	payload, err := fn(r.Context(), string(body))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, payload)
	case diag.IsCompilation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Compilation: true})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	default:
		api.log.Warn("Compile request failed", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (api *compileAPI) listSamples(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, samples.Names())
}

func (api *compileAPI) sample(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	c, err := samples.Build(ps.ByName("name"))
	if errors.Is(err, samples.ErrUnknownSample) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	var text string
	if err == nil {
		text, err = c.Serialize()
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// splitAndTrim splits input separated by a comma and trims excessive white
// space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}
