// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package linkspec

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	weak := func(dep Dependency) (Dependency, error) {
		dep.LinkType = Weak
		return dep, nil
	}
	upwardFoo := func(dep Dependency) (Dependency, error) {
		if strings.Contains(dep.Name, "foo") {
			dep.LinkType = Upward
		}
		return dep, nil
	}
	rename := func(dep Dependency) (Dependency, error) {
		dep.Name = "other"
		dep.Path = "/other"
		dep.Framework = !dep.Framework
		return dep, nil
	}

	for _, tc := range []struct {
		name      string
		dep       string
		framework bool
		hooks     []Hook
		want      Dependency
	}{
		{
			name: "default",
			dep:  "/lib/libfoo.a",
			want: Dependency{Name: "libfoo.a", Path: "/lib/libfoo.a", LinkType: Strong},
		},
		{
			name:      "default-framework",
			dep:       "Foundation",
			framework: true,
			want:      Dependency{Name: "Foundation", Framework: true, LinkType: Strong},
		},
		{
			name:  "last-wins",
			dep:   "/lib/libfoo.a",
			hooks: []Hook{upwardFoo, weak},
			want:  Dependency{Name: "libfoo.a", Path: "/lib/libfoo.a", LinkType: Weak},
		},
		{
			name:  "last-wins-reversed",
			dep:   "/lib/libfoo.a",
			hooks: []Hook{weak, upwardFoo},
			want:  Dependency{Name: "libfoo.a", Path: "/lib/libfoo.a", LinkType: Upward},
		},
		{
			name:  "no-rename",
			dep:   "/lib/libbar.a",
			hooks: []Hook{rename},
			want:  Dependency{Name: "libbar.a", Path: "/lib/libbar.a", LinkType: Strong},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			classify := ClassifyLibrary
			if tc.framework {
				classify = ClassifyFramework
			}
			got, err := classify(tc.dep, tc.hooks)
			if err != nil {
				t.Fatalf("classify(%q, hooks)=_, %v; want nil err", tc.dep, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("classify(%q, hooks) diff (-want +got):\n%s", tc.dep, diff)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	errHook := errors.New("hook failed")
	_, err := ClassifyLibrary("/lib/libfoo.a", []Hook{
		func(dep Dependency) (Dependency, error) {
			return dep, errHook
		},
	})
	if !errors.Is(err, errHook) {
		t.Errorf("ClassifyLibrary=_, %v; want %v", err, errHook)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("/out/libfoo.so")
	b.ObjectFiles("/obj/b.o", "/obj/a.o").
		ObjectFiles("/obj/c.o").
		Libraries("/lib/libz.a", "/lib/liby.a").
		Frameworks("Foundation").
		FrameworkPath("/sdk/Frameworks").
		SystemArgs("-m64").
		Args("-Wl,--gc-sections").
		SetDebuggable(true).
		SetShared("libfoo.so.1").
		WholeArchives(func(lib string) bool {
			return filepath.Base(lib) == "liby.a"
		})
	s := b.Freeze()

	if diff := cmp.Diff([]string{"/obj/b.o", "/obj/a.o", "/obj/c.o"}, s.ObjectFiles()); diff != "" {
		t.Errorf("ObjectFiles diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/lib/libz.a", "/lib/liby.a"}, s.Libraries()); diff != "" {
		t.Errorf("Libraries diff (-want +got):\n%s", diff)
	}
	if !s.Shared() || s.InstallName() != "libfoo.so.1" || !s.Debuggable() {
		t.Errorf("shared=%t installName=%q debuggable=%t; want true libfoo.so.1 true", s.Shared(), s.InstallName(), s.Debuggable())
	}
	for lib, want := range map[string]bool{
		"/lib/libz.a": false,
		"/lib/liby.a": true,
	} {
		dep, err := s.ClassifyLibrary(lib)
		if err != nil {
			t.Fatalf("ClassifyLibrary(%q)=_, %v; want nil err", lib, err)
		}
		if dep.WholeArchive != want {
			t.Errorf("ClassifyLibrary(%q).WholeArchive=%t; want %t", lib, dep.WholeArchive, want)
		}
	}

	// returned slices are copies.
	objs := s.ObjectFiles()
	objs[0] = "/obj/x.o"
	if got := s.ObjectFiles()[0]; got != "/obj/b.o" {
		t.Errorf("ObjectFiles()[0]=%q after mutating a copy; want /obj/b.o", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Libraries after Freeze didn't panic")
		}
	}()
	b.Libraries("/lib/libw.a")
}
