// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/linkspec"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

func TestLink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fname := filepath.Join(dir, "link.json")
	err := os.WriteFile(fname, []byte(`{
  "tool": "clang++",
  "output": "out/libfoo.so",
  "object_files": ["obj/a.o", "obj/b.o"],
  "libraries": ["lib/libx.a", "lib/liby.a"],
  "whole_archives": ["lib/libx.a"],
  "shared": true,
  "install_name": "libfoo.so.1",
  "args": ["-Wl,--as-needed"]
}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	sf, err := LoadLinkSpecFile(fname)
	if err != nil {
		t.Fatalf("LoadLinkSpecFile=%v; want nil err", err)
	}
	lb, err := sf.Builder()
	if err != nil {
		t.Fatalf("Builder=%v; want nil err", err)
	}
	rec := &execute.Recorder{}
	b, m := newTestBuilder(t, rec)
	cmd, err := b.Link(ctx, sf.Tool, sf.Dir, lb.Freeze(), gccutil.Linux)
	if err != nil {
		t.Fatalf("Link=%v; want nil err", err)
	}
	want := []string{
		"clang++",
		"-shared", "-Wl,-soname,libfoo.so.1",
		"-o", filepath.Join(dir, "out/libfoo.so"),
		filepath.Join(dir, "obj/a.o"),
		filepath.Join(dir, "obj/b.o"),
		"-Wl,-whole-archive", filepath.Join(dir, "lib/libx.a"), "-Wl,-no-whole-archive",
		filepath.Join(dir, "lib/liby.a"),
		"-Wl,--as-needed",
	}
	if diff := cmp.Diff(want, cmd.Args); diff != "" {
		t.Errorf("args diff (-want +got):\n%s", diff)
	}
	if cmd.Desc != "linking libfoo.so" {
		t.Errorf("desc=%q; want %q", cmd.Desc, "linking libfoo.so")
	}
	if v := testutil.ToFloat64(m.links.WithLabelValues("linux")); v != 1 {
		t.Errorf("linux links=%v; want 1", v)
	}

	err = b.RunLink(ctx, cmd)
	if err != nil {
		t.Errorf("RunLink=%v; want nil err", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); err != nil {
		t.Errorf("output dir: %v", err)
	}
	if n := len(rec.Cmds()); n != 1 {
		t.Errorf("ran %d cmds; want 1", n)
	}
}

func TestLink_Hook(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sf := &LinkSpecFile{
		Tool:       "clang++",
		Output:     "out/app",
		Libraries:  []string{"libz.dylib"},
		Frameworks: []string{"Foundation"},
		Dir:        dir,
	}
	weak := func(dep linkspec.Dependency) (linkspec.Dependency, error) {
		dep.LinkType = linkspec.Weak
		return dep, nil
	}
	lb, err := sf.Builder(weak)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := newTestBuilder(t, &execute.Recorder{})
	cmd, err := b.Link(ctx, sf.Tool, sf.Dir, lb.Freeze(), gccutil.MacOS)
	if err != nil {
		t.Fatalf("Link=%v; want nil err", err)
	}
	want := []string{
		"clang++",
		"-o", filepath.Join(dir, "out/app"),
		"-Wl,-weak_library," + filepath.Join(dir, "libz.dylib"),
		"-Wl,-weak_framework,Foundation",
	}
	if diff := cmp.Diff(want, cmd.Args); diff != "" {
		t.Errorf("args diff (-want +got):\n%s", diff)
	}
}

func TestLink_Unsupported(t *testing.T) {
	ctx := context.Background()
	sf := &LinkSpecFile{
		Tool:        "clang++",
		Output:      "app",
		LibraryPath: []string{"lib"},
		Dir:         t.TempDir(),
	}
	lb, err := sf.Builder()
	if err != nil {
		t.Fatal(err)
	}
	b, m := newTestBuilder(t, &execute.Recorder{})
	_, err = b.Link(ctx, sf.Tool, sf.Dir, lb.Freeze(), gccutil.Linux)
	if !errors.Is(err, gccutil.ErrUnsupportedConfiguration) {
		t.Errorf("Link=%v; want ErrUnsupportedConfiguration", err)
	}
	if v := testutil.ToFloat64(m.links.WithLabelValues("linux")); v != 0 {
		t.Errorf("linux links=%v; want 0", v)
	}
}
