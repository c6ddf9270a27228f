// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix

package localexec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.chromium.org/infra/build/cxxbuild/execute"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
	}{
		{
			name:       "success",
			args:       []string{"sh", "-c", "echo hello"},
			wantStdout: "hello\n",
		},
		{
			name:     "failure",
			args:     []string{"sh", "-c", "exit 3"},
			wantExit: 3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &execute.Cmd{
				ID:   execute.NewID(),
				Args: tc.args,
				Dir:  t.TempDir(),
			}
			err := LocalExec{}.Run(ctx, cmd)
			var eerr execute.ExitError
			switch {
			case tc.wantExit == 0 && err != nil:
				t.Fatalf("Run(%q)=%v; want nil err", tc.args, err)
			case tc.wantExit != 0 && (!errors.As(err, &eerr) || eerr.ExitCode != tc.wantExit):
				t.Fatalf("Run(%q)=%v; want exit=%d", tc.args, err, tc.wantExit)
			}
			if got := string(cmd.Stdout()); got != tc.wantStdout {
				t.Errorf("stdout=%q; want %q", got, tc.wantStdout)
			}
			res := cmd.ActionResult()
			if res == nil || res.GetExecutionMetadata().GetWorker() != WorkerName {
				t.Errorf("action result=%v; want worker %q", res, WorkerName)
			}
			if tc.wantExit != 0 && !strings.Contains(string(cmd.Stderr()), "cmd: ") {
				t.Errorf("stderr=%q; want cmd info", cmd.Stderr())
			}
		})
	}
}

func TestRun_NoArgs(t *testing.T) {
	err := LocalExec{}.Run(context.Background(), &execute.Cmd{ID: "empty"})
	if err == nil {
		t.Errorf("Run(no args)=nil; want error")
	}
}
