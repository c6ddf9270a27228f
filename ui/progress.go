// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.chromium.org/infra/build/cxxbuild/execute"
)

// Progress reports progress of cmds.
type Progress struct {
	ui      UI
	total   int
	started time.Time

	mu     sync.Mutex
	done   int
	failed int
}

// NewProgress returns a progress of total cmds reported to u.
func NewProgress(u UI, total int) *Progress {
	return &Progress{
		ui:      u,
		total:   total,
		started: time.Now(),
	}
}

// Executor returns an executor that runs cmds on executor and
// reports each finished cmd.
func (p *Progress) Executor(executor execute.Executor) execute.Executor {
	return execute.ExecutorFunc(func(ctx context.Context, cmd *execute.Cmd) error {
		err := executor.Run(ctx, cmd)
		p.finish(cmd, err)
		return err
	})
}

func (p *Progress) finish(cmd *execute.Cmd, err error) {
	p.mu.Lock()
	p.done++
	if err != nil {
		p.failed++
	}
	msg := fmt.Sprintf("[%d/%d] %s %s", p.done, p.total, FormatDuration(time.Since(p.started)), cmd.Desc)
	p.mu.Unlock()
	if err != nil {
		// keep failed lines on the screen.
		p.ui.PrintLines("\n", fmt.Sprintf("%s %s: %v\n", msg, failedStyle.Render("FAILED"), err))
		return
	}
	p.ui.PrintLines(msg)
}

// Summary returns a summary line of the progress.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := doneStyle.Render(fmt.Sprintf("%d/%d done", p.done, p.total))
	s += " in " + FormatDuration(time.Since(p.started))
	if p.failed > 0 {
		s += ", " + failedStyle.Render(fmt.Sprintf("%d failed", p.failed))
	}
	return s
}
