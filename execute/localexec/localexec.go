// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/o11y/clog"
	"go.chromium.org/infra/build/cxxbuild/runtimex"
	"go.chromium.org/infra/build/cxxbuild/sync/semaphore"
)

// WorkerName is a name used for worker of the cmd in action result.
const WorkerName = "local"

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs a cmd.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	res, err := run(ctx, cmd)
	if err != nil {
		return err
	}
	cmd.StdoutWriter().Write(res.StdoutRaw)
	cmd.StderrWriter().Write(res.StderrRaw)
	cmd.SetActionResult(res)

	clog.Infof(ctx, "exit=%d stdout=%d stderr=%d", res.ExitCode, len(res.StdoutRaw), len(res.StderrRaw))

	if res.ExitCode != 0 {
		return execute.ExitError{ExitCode: int(res.ExitCode)}
	}
	return nil
}

// windows: fork/exec: Not enough memory resources are available to process this command.
var forkSema = semaphore.New("fork", runtimex.NumCPU())

func run(ctx context.Context, cmd *execute.Cmd) (*rpb.ActionResult, error) {
	if len(cmd.Args) == 0 {
		return nil, fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	s := time.Now()
	err := forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err == nil {
		err = c.Wait()
	}
	e := time.Now()
	clog.Debugf(ctx, "%s %v", cmd.ID, err)
	if err != nil && ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}

	result := &rpb.ActionResult{
		ExitCode:  exitCode(err),
		StdoutRaw: stdout.Bytes(),
		StderrRaw: stderr.Bytes(),
		ExecutionMetadata: &rpb.ExecutedActionMetadata{
			Worker:                      WorkerName,
			ExecutionStartTimestamp:     timestamppb.New(s),
			ExecutionCompletedTimestamp: timestamppb.New(e),
		},
	}
	if result.ExitCode != 0 {
		result.StderrRaw = append(result.StderrRaw, []byte(fmt.Sprintf("\ncmd: %q env: %q dir: %q error: %v", cmd.Args, cmd.Env, cmd.Dir, err))...)
	}
	return result, nil
}

func exitCode(err error) int32 {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		return int32(w.ExitStatus())
	}
	return 1
}
