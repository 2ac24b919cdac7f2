// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package scgiexec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bep/helpers/envhelpers"
	"golang.org/x/sync/errgroup"
)

// NewClient creates a client for the given options.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{opts: opts}
}

// Client drives the adapter the way an SCGI front end would: one process
// per request, the request's header block written to its standard input,
// the response collected from its standard output. Used for integration
// testing; the real front end speaks to the adapter over a socket.
type Client struct {
	opts ClientOptions
}

// ClientOptions are options for the client.
type ClientOptions struct {
	// The adapter command to run.
	Cmd string

	// The arguments to pass to the command.
	Args []string

	// Environment variables to set for the command, merged over the
	// environment of the current process. A slice of "key=value" strings.
	Env []string

	// Dir specifies the working directory of the command.
	Dir string

	// Timeout for one request.
	Timeout time.Duration
}

// Response is the CGI-style response collected from one adapter run.
type Response struct {
	// Status is the value of the Status response header, if any.
	Status string

	Header map[string]string
	Body   []byte

	// ExitCode is the adapter's exit code; on the success path it is the
	// exit code of the script the adapter exec'd into.
	ExitCode int

	// Stderr holds the tail of whatever the process wrote to stderr.
	Stderr string
}

// Do spawns one adapter process, writes the encoded header block to its
// standard input and returns the parsed response. Each call gets a fresh
// process, matching the adapter's one-request lifecycle.
func (c *Client) Do(fields Fields) (*Response, error) {
	cmd := exec.Command(c.opts.Cmd, c.opts.Args...)
	cmd.Dir = c.opts.Dir

	env := os.Environ()
	for _, kv := range c.opts.Env {
		key, val := envhelpers.SplitEnvVar(kv)
		envhelpers.SetEnvVars(&env, key, val)
	}
	cmd.Env = env

	stdErr := &tailBuffer{limit: 1024}
	cmd.Stderr = stdErr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var output []byte
	var g errgroup.Group
	g.Go(func() error {
		defer in.Close()
		return fields.Write(in)
	})
	g.Go(func() error {
		var err error
		output, err = io.ReadAll(out)
		return err
	})
	if err := g.Wait(); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("request failed: %s: %s", err, stdErr.String())
	}

	exitCode, err := c.waitWithTimeout(cmd)
	if err != nil {
		return nil, err
	}

	resp := parseResponse(output)
	resp.ExitCode = exitCode
	resp.Stderr = stdErr.String()

	return resp, nil
}

func (c *Client) waitWithTimeout(cmd *exec.Cmd) (int, error) {
	result := make(chan error, 1)
	go func() { result <- cmd.Wait() }()
	select {
	case err := <-result:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	case <-time.After(c.opts.Timeout):
		cmd.Process.Kill()
		return 0, errors.New("timed out waiting for adapter to finish")
	}
}

// parseResponse splits a CGI-style response into headers and body.
// Output with no header/body separator is treated as all body.
func parseResponse(output []byte) *Response {
	resp := &Response{Header: map[string]string{}}

	head, body, found := bytes.Cut(output, []byte("\r\n\r\n"))
	if !found {
		resp.Body = output
		return resp
	}
	resp.Body = body

	for _, line := range strings.Split(string(head), "\r\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		resp.Header[name] = strings.TrimSpace(value)
	}
	resp.Status = resp.Header["Status"]

	return resp
}

type tailBuffer struct {
	mu sync.Mutex

	limit int
	buff  bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(p)+b.buff.Len() > b.limit {
		b.buff.Reset()
	}
	n, err = b.buff.Write(p)
	return
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buff.String()
}
