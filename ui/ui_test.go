// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"go.chromium.org/infra/build/cxxbuild/execute"
)

func TestElideMiddle(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "[12/345] 1m02.00s compiling third_party/abseil-cpp/absl/strings/internal/str_format/float_conversion.cc",
			width: 40,
			want:  "[12/345] 1m02.00s ...loat_conversion.cc",
		},
		{
			msg:   "[1/2] 0.10s \033[31;1mFAILED\033[0m",
			width: 80,
			want:  "[1/2] 0.10s \033[31;1mFAILED\033[0m",
		},
		{
			msg:   "\033[1m[3/3] 0.20s compiling src/very_long_directory_name/widget.cc\033[0m",
			width: 30,
			want:  "[3/3] 0.20s c...ame/widget.cc",
		},
		{
			msg:   "short",
			width: 3,
			want:  "short",
		},
	} {
		got := elideMiddle(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("elideMiddle(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}

type fakeUI struct {
	mu    sync.Mutex
	lines []string
}

func (u *fakeUI) PrintLines(msgs ...string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, m := range msgs {
		if m == "\n" {
			continue
		}
		u.lines = append(u.lines, ansi.Strip(m))
	}
}

func (u *fakeUI) NewSpinner() Spinner { return &logSpinner{} }

func TestProgress(t *testing.T) {
	ctx := context.Background()
	u := &fakeUI{}
	p := NewProgress(u, 3)
	rec := &execute.Recorder{
		Fail: func(cmd *execute.Cmd) error {
			if cmd.Desc == "compiling b.cc" {
				return execute.ExitError{ExitCode: 1}
			}
			return nil
		},
	}
	exec := p.Executor(rec)
	for _, desc := range []string{"compiling a.cc", "compiling b.cc", "compiling c.cc"} {
		err := exec.Run(ctx, &execute.Cmd{Desc: desc})
		if (err != nil) != (desc == "compiling b.cc") {
			t.Errorf("Run(%q)=%v", desc, err)
		}
		if err != nil && !errors.Is(err, execute.ExitError{ExitCode: 1}) {
			t.Errorf("Run(%q)=%v; want exit=1", desc, err)
		}
	}
	if len(u.lines) != 3 {
		t.Fatalf("lines=%q; want 3 lines", u.lines)
	}
	for i, want := range []string{"[1/3] ", "[2/3] ", "[3/3] "} {
		if !strings.HasPrefix(u.lines[i], want) {
			t.Errorf("lines[%d]=%q; want prefix %q", i, u.lines[i], want)
		}
	}
	if !strings.Contains(u.lines[1], "compiling b.cc FAILED: exit=1") {
		t.Errorf("lines[1]=%q; want FAILED", u.lines[1])
	}
	if s := ansi.Strip(p.Summary()); !strings.HasPrefix(s, "3/3 done") || !strings.HasSuffix(s, "1 failed") {
		t.Errorf("Summary()=%q; want 3/3 done, 1 failed", s)
	}
}
