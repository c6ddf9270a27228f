// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package execute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// concurrencyExec records the max number of cmds running at once.
type concurrencyExec struct {
	mu      sync.Mutex
	running int
	max     int
}

func (e *concurrencyExec) Run(ctx context.Context, cmd *Cmd) error {
	e.mu.Lock()
	e.running++
	e.max = max(e.max, e.running)
	e.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	e.mu.Lock()
	e.running--
	e.mu.Unlock()
	if cmd.Desc == "fail" {
		return ExitError{ExitCode: 1}
	}
	return nil
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	exec := &concurrencyExec{}
	q := NewQueue(exec, 2)
	if q.Capacity() != 2 {
		t.Errorf("Capacity()=%d; want 2", q.Capacity())
	}
	var tokens []*Token
	for i := range 6 {
		cmd := &Cmd{ID: NewID(), Desc: fmt.Sprintf("cmd%d", i)}
		if i == 3 {
			cmd.Desc = "fail"
		}
		tokens = append(tokens, q.Submit(ctx, cmd))
	}
	for i, tok := range tokens {
		err := tok.Wait(ctx)
		if i == 3 {
			if !errors.Is(err, ExitError{ExitCode: 1}) {
				t.Errorf("token[%d].Wait=%v; want exit=1", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("token[%d].Wait=%v; want nil err", i, err)
		}
	}
	if err := q.Wait(); !errors.Is(err, ExitError{ExitCode: 1}) {
		t.Errorf("Wait()=%v; want exit=1", err)
	}
	if exec.max > 2 {
		t.Errorf("max concurrency=%d; want <= 2", exec.max)
	}
}

func TestTokenWait_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	q := NewQueue(ExecutorFunc(func(ctx context.Context, cmd *Cmd) error {
		<-block
		return nil
	}), 1)
	tok := q.Submit(context.Background(), &Cmd{ID: "blocked"})
	cancel()
	if err := tok.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait(canceled)=%v; want context.Canceled", err)
	}
	close(block)
	if err := q.Wait(); err != nil {
		t.Errorf("Wait()=%v; want nil err", err)
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := &Recorder{
		Fail: func(cmd *Cmd) error {
			if cmd.ID == "b" {
				return ExitError{ExitCode: 2}
			}
			return nil
		},
	}
	if err := r.Run(ctx, &Cmd{ID: "a"}); err != nil {
		t.Errorf("Run(a)=%v; want nil err", err)
	}
	if err := r.Run(ctx, &Cmd{ID: "b"}); !errors.Is(err, ExitError{ExitCode: 2}) {
		t.Errorf("Run(b)=%v; want exit=2", err)
	}
	cmds := r.Cmds()
	if len(cmds) != 2 || cmds[0].ID != "a" || cmds[1].ID != "b" {
		t.Errorf("Cmds()=%v; want [a b]", cmds)
	}
}
