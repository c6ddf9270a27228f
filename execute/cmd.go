// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute describes tool invocations and runs them.
package execute

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/infra/build/cxxbuild/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// ExecutorFunc is an Executor as a function.
type ExecutorFunc func(ctx context.Context, cmd *Cmd) error

// Run runs cmd by calling f.
func (f ExecutorFunc) Run(ctx context.Context, cmd *Cmd) error {
	return f(ctx, cmd)
}

// Cmd includes all the information required to run a tool invocation.
type Cmd struct {
	// ID is used as a unique identifier for this invocation in logs.
	ID string

	// Desc is a short, human-readable description of the invocation.
	// Example: "compiling hello.cc"
	Desc string

	// ActionName is the kind of the invocation.
	// Example: "cxx", "cxx_module" or "link"
	ActionName string

	// Args holds command line arguments, including the tool.
	Args []string

	// Env specifies the environment of the process.
	Env []string

	// Dir specifies the working directory of the cmd.
	Dir string

	// Outputs are output files of the cmd.
	Outputs []string

	// DepsArgs are args to get header deps of the cmd.
	DepsArgs []string

	stdoutWriter, stderrWriter io.Writer
	stdoutBuffer, stderrBuffer bytes.Buffer

	actionResult *rpb.ActionResult
}

// NewID returns a new ID for a cmd.
func NewID() string {
	return uuid.New().String()
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w for stdout.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w for stderr.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// SetActionResult sets the result of the cmd.
func (c *Cmd) SetActionResult(result *rpb.ActionResult) {
	c.actionResult = result
}

// ActionResult returns the result of the cmd, or nil if it has not run.
func (c *Cmd) ActionResult() *rpb.ActionResult {
	return c.actionResult
}

// REAPICommand returns the cmd as a command of remote execution API.
func (c *Cmd) REAPICommand() *rpb.Command {
	cmd := &rpb.Command{
		Arguments:        c.Args,
		WorkingDirectory: c.Dir,
		OutputPaths:      c.Outputs,
	}
	for _, e := range c.Env {
		name, value, _ := strings.Cut(e, "=")
		cmd.EnvironmentVariables = append(cmd.EnvironmentVariables, &rpb.Command_EnvironmentVariable{
			Name:  name,
			Value: value,
		})
	}
	return cmd
}

// Digest returns a digest of the cmd's command line, working directory,
// environment and outputs.
// Two cmds have the same digest iff they run the same command.
func (c *Cmd) Digest() (*rpb.Digest, error) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(c.REAPICommand())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command %s: %w", c, err)
	}
	h := sha256.Sum256(b)
	return &rpb.Digest{
		Hash:      hex.EncodeToString(h[:]),
		SizeBytes: int64(len(b)),
	}, nil
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
