// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package scgiexec adapts one SCGI request to a CGI script execution.
//
// The program is spawned per connection by an SCGI-speaking front end with
// the connection on its standard input and output. It reads exactly one
// header block, rebuilds a CGI-compatible environment, validates the
// target script path and replaces itself with the script. On any failure
// it writes a minimal CGI-style error response and exits non-zero.
package scgiexec

import (
	"errors"
	"io"
	"log/slog"
	"syscall"
)

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(path string, argv []string, env []string) error

// Runner sequences one request through the pipeline:
// decode the header block, build the environment, resolve the script,
// exec. Run never returns on success.
type Runner struct {
	// Stdin is the connection's read side.
	Stdin io.Reader

	// Args are the adapter's own invocation arguments (without the
	// program name).
	Args []string

	// Environ is the base environment provided by the supervisor.
	Environ []string

	Config Config

	// Logger is the best-effort debug channel. Defaults to a discarding
	// logger.
	Logger *slog.Logger

	// Exec defaults to the process-replacing exec system call.
	// Tests stub it.
	Exec ExecFunc
}

// Run handles the request. On success the process image has been replaced
// and the call diverges; it returns only the error to report.
func (r *Runner) Run() *Error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fields, err := ReadFields(r.Stdin, r.Config.MaxHeaderLength)
	if err != nil {
		return toError(err)
	}
	logger.Debug("decoded SCGI header", "fields", len(fields))
	for _, f := range fields {
		logger.Debug("set", "name", f.Name, "value", f.Value)
	}

	env := BuildEnviron(r.Environ, fields)

	inv, err := ResolveScript(env, r.Args, r.Config.ScriptDir)
	if err != nil {
		return toError(err)
	}
	logger.Debug("resolved script", "path", inv.Path, "argv", inv.Argv)

	execFn := r.Exec
	if execFn == nil {
		execFn = defaultExec
	}

	// Only reached when exec failed.
	err = execFn(inv.Path, inv.Argv, env)
	if errors.Is(err, syscall.ENOENT) {
		return Errorf(StatusNotFound, "Can't locate CGI script\n")
	}
	return Errorf(StatusInternalError, "Unable to execute CGI script, please contact the system administrator\n%s\n", err)
}
