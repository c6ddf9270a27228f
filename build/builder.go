// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package build plans compile and link invocations of native binaries.
//
// A compile task compiles each source file in a separate invocation.
// With a C++20 module schema, module interface units are precompiled and
// invocations are run one by one in source order, so that an importer
// is never compiled before the interfaces it imports. Without a module
// schema, all invocations are submitted at once and run concurrently.
//
// A link task turns a frozen link spec into a link command.
package build

import (
	"context"
	"fmt"

	"go.chromium.org/infra/build/cxxbuild/execute"
)

// logLabelKeyID is a key of logging label for invocation ID.
const logLabelKeyID = "id"

// Queue accepts invocations to run.
type Queue interface {
	// Submit submits cmd and returns its completion token.
	Submit(ctx context.Context, cmd *execute.Cmd) *execute.Token
}

// Options is builder options.
type Options struct {
	// Metrics records invocation metrics if set.
	Metrics *Metrics
}

// Builder is a builder of native binaries.
type Builder struct {
	queue   Queue
	metrics *Metrics
}

// New creates a new builder that submits invocations to queue.
func New(queue Queue, opts Options) *Builder {
	return &Builder{
		queue:   queue,
		metrics: opts.Metrics,
	}
}

// InvocationError is an error of a tool invocation.
type InvocationError struct {
	Cmd *execute.Cmd
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("failed to run %s (%s): %v", e.Cmd.Desc, e.Cmd.ID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// run submits cmd and waits for it.
func (b *Builder) run(ctx context.Context, cmd *execute.Cmd) error {
	err := b.queue.Submit(ctx, cmd).Wait(ctx)
	if err != nil {
		b.metrics.failed(cmd)
		return &InvocationError{Cmd: cmd, Err: err}
	}
	return nil
}
