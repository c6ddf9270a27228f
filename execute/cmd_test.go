// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package execute

import (
	"testing"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/testing/protocmp"
)

func TestREAPICommand(t *testing.T) {
	cmd := &Cmd{
		Args:    []string{"clang++", "-c", "a.cc", "-o", "a.o"},
		Env:     []string{"PATH=/bin", "EMPTY=", "NOVALUE"},
		Dir:     "/src",
		Outputs: []string{"a.o"},
	}
	want := &rpb.Command{
		Arguments: []string{"clang++", "-c", "a.cc", "-o", "a.o"},
		EnvironmentVariables: []*rpb.Command_EnvironmentVariable{
			{Name: "PATH", Value: "/bin"},
			{Name: "EMPTY"},
			{Name: "NOVALUE"},
		},
		WorkingDirectory: "/src",
		OutputPaths:      []string{"a.o"},
	}
	if diff := cmp.Diff(want, cmd.REAPICommand(), protocmp.Transform()); diff != "" {
		t.Errorf("REAPICommand diff (-want +got):\n%s", diff)
	}
}

func TestDigest(t *testing.T) {
	newCmd := func(args ...string) *Cmd {
		return &Cmd{
			ID:      NewID(),
			Args:    args,
			Dir:     "/src",
			Outputs: []string{"a.o"},
		}
	}
	d1, err := newCmd("clang++", "-c", "a.cc").Digest()
	if err != nil {
		t.Fatal(err)
	}
	// ID and Desc don't affect the digest.
	d2, err := newCmd("clang++", "-c", "a.cc").Digest()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d1, d2, protocmp.Transform()); diff != "" {
		t.Errorf("Digest of the same command diff (-want +got):\n%s", diff)
	}
	d3, err := newCmd("clang++", "-c", "b.cc").Digest()
	if err != nil {
		t.Fatal(err)
	}
	if d1.GetHash() == d3.GetHash() {
		t.Errorf("Digest of different commands=%s; want different", d1.GetHash())
	}
	if len(d1.GetHash()) != 64 || d1.GetSizeBytes() == 0 {
		t.Errorf("Digest=%v; want sha256 hash and size", d1)
	}
}
