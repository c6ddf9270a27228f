// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides a counting semaphore to bound concurrent
// tool invocations.
package semaphore

import (
	"context"
	"sync/atomic"
)

// Semaphore is a counting semaphore.
// Each acquired slot has a slot id in [1, capacity].
type Semaphore struct {
	name string
	ch   chan int

	waits atomic.Int64
}

// New creates a new semaphore with name and capacity.
// capacity less than 1 is treated as 1.
func New(name string, n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	ch := make(chan int, n)
	for i := 0; i < n; i++ {
		ch <- i + 1
	}
	return &Semaphore{
		name: name,
		ch:   ch,
	}
}

// WaitAcquire acquires a slot.
// It returns the slot id and func to release it.
func (s *Semaphore) WaitAcquire(ctx context.Context) (int, func(), error) {
	s.waits.Add(1)
	defer s.waits.Add(-1)
	select {
	case tid := <-s.ch:
		return tid, func() {
			s.ch <- tid
		}, nil
	case <-ctx.Done():
		return 0, func() {}, context.Cause(ctx)
	}
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return cap(s.ch)
}

// NumServs returns number of currently served.
func (s *Semaphore) NumServs() int {
	return cap(s.ch) - len(s.ch)
}

// NumWaits returns number of waiters.
func (s *Semaphore) NumWaits() int {
	return int(s.waits.Load())
}

// Do runs f under semaphore.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) error {
	_, done, err := s.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer done()
	return f(ctx)
}
