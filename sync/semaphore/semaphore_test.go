// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package semaphore_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.chromium.org/infra/build/cxxbuild/sync/semaphore"
)

func TestWaitAcquire(t *testing.T) {
	ctx := context.Background()
	sema := semaphore.New(t.Name(), 3)
	if name := sema.Name(); name != t.Name() {
		t.Errorf("Name=%q; want %q", name, t.Name())
	}
	if n := sema.Capacity(); n != 3 {
		t.Errorf("Capacity=%d; want %d", n, 3)
	}

	var dones []func()
	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		tid, done, err := sema.WaitAcquire(ctx)
		if err != nil {
			t.Fatalf("WaitAcquire %d: %v", i, err)
		}
		if tid < 1 || tid > 3 || seen[tid] {
			t.Errorf("WaitAcquire %d: tid=%d; want unique tid in [1,3]", i, tid)
		}
		seen[tid] = true
		dones = append(dones, done)
		if n := sema.NumServs(); n != i+1 {
			t.Errorf("NumServs=%d; want %d", n, i+1)
		}
	}
	func() {
		ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, _, err := sema.WaitAcquire(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("WaitAcquire=_, _, %v; want %v", err, context.DeadlineExceeded)
		}
		if n := sema.NumWaits(); n != 0 {
			t.Errorf("NumWaits=%d; want %d", n, 0)
		}
	}()

	for _, done := range dones {
		done()
	}
	if n := sema.NumServs(); n != 0 {
		t.Errorf("NumServs=%d; want %d", n, 0)
	}
	_, done, err := sema.WaitAcquire(ctx)
	if err != nil {
		t.Fatalf("WaitAcquire with free slots=%v; want nil err", err)
	}
	done()
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	const capacity = 2
	sema := semaphore.New(t.Name(), capacity)

	var running, maxRunning atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sema.Do(ctx, func(ctx context.Context) error {
				n := running.Add(1)
				defer running.Add(-1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("Do=%v; want nil", err)
			}
		}()
	}
	wg.Wait()
	if n := maxRunning.Load(); n > capacity {
		t.Errorf("max running=%d; want <= %d", n, capacity)
	}
	if n := sema.NumServs(); n != 0 {
		t.Errorf("NumServs=%d; want 0", n)
	}
}
