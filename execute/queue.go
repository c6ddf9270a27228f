// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package execute

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/cxxbuild/o11y/clog"
	"go.chromium.org/infra/build/cxxbuild/sync/semaphore"
)

// Token is a completion token of a submitted cmd.
type Token struct {
	cmd  *Cmd
	done chan struct{}
	err  error
}

// Cmd returns the submitted cmd.
func (t *Token) Cmd() *Cmd {
	return t.cmd
}

// Wait waits for the cmd to finish and returns its error.
func (t *Token) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Queue runs submitted cmds concurrently on an executor.
// The number of concurrently running cmds is bounded by the
// queue's capacity.
type Queue struct {
	executor Executor
	sema     *semaphore.Semaphore
	eg       errgroup.Group
}

// NewQueue creates a new queue that runs at most n cmds on executor
// concurrently.
func NewQueue(executor Executor, n int) *Queue {
	return &Queue{
		executor: executor,
		sema:     semaphore.New("queue", n),
	}
}

// Capacity returns the number of cmds that may run concurrently.
func (q *Queue) Capacity() int {
	return q.sema.Capacity()
}

// Submit submits cmd and returns its completion token.
// A failure of a cmd doesn't affect other cmds in the queue.
func (q *Queue) Submit(ctx context.Context, cmd *Cmd) *Token {
	t := &Token{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	q.eg.Go(func() error {
		defer close(t.done)
		ctx := clog.NewSpan(ctx, map[string]string{
			"id":   cmd.ID,
			"desc": cmd.Desc,
		})
		t.err = q.run(ctx, cmd)
		if t.err != nil {
			clog.Warningf(ctx, "failed %s: %v", cmd.Desc, t.err)
		}
		return t.err
	})
	return t
}

// run runs cmd in a slot of the queue.
// The slot id is logged as "slot" label.
func (q *Queue) run(ctx context.Context, cmd *Cmd) error {
	slot, release, err := q.sema.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	ctx = clog.NewSpan(ctx, map[string]string{"slot": strconv.Itoa(slot)})
	clog.Debugf(ctx, "run %s: %s %d running, %d waiting", cmd.Desc, q.sema.Name(), q.sema.NumServs(), q.sema.NumWaits())
	return q.executor.Run(ctx, cmd)
}

// Wait waits for all submitted cmds and returns the first error.
func (q *Queue) Wait() error {
	return q.eg.Wait()
}

// Recorder is an executor that records cmds without running them.
type Recorder struct {
	// Fail, if set, returns the result of the cmd.
	Fail func(*Cmd) error

	mu   sync.Mutex
	cmds []*Cmd
}

// Run records cmd.
func (r *Recorder) Run(ctx context.Context, cmd *Cmd) error {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail(cmd)
	}
	return nil
}

// Cmds returns recorded cmds in the order they were run.
func (r *Recorder) Cmds() []*Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds := make([]*Cmd, len(r.cmds))
	copy(cmds, r.cmds)
	return cmds
}
