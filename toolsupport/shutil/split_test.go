// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		cmdline string
		want    []string
	}{
		{
			cmdline: `-O2 -DNDEBUG -DCR_CLANG_REVISION=\"llvmorg-13\" -I../..  -std=c++20`,
			want: []string{
				"-O2",
				"-DNDEBUG",
				`-DCR_CLANG_REVISION="llvmorg-13"`,
				"-I../..",
				"-std=c++20",
			},
		},
		{
			cmdline: `-F "/Library/Developer/My Frameworks" -Wl,-dead_strip`,
			want: []string{
				"-F",
				"/Library/Developer/My Frameworks",
				"-Wl,-dead_strip",
			},
		},
		{
			cmdline: `  -g   -O0 `,
			want:    []string{"-g", "-O0"},
		},
		{
			cmdline: `-DEMPTY="" ""`,
			want:    []string{"-DEMPTY=", ""},
		},
		{
			cmdline: "",
			want:    nil,
		},
	} {
		args, err := Split(tc.cmdline)
		if err != nil {
			t.Errorf("Split(%q)=%q, %v; want nil error", tc.cmdline, args, err)
		}
		if diff := cmp.Diff(tc.want, args); diff != "" {
			t.Errorf("Split(%q); diff -want +got:\n%s", tc.cmdline, diff)
		}
	}
}

func TestSplit_Error(t *testing.T) {
	for _, cmdline := range []string{
		`clang++ -c foo.cc 2>/dev/null || true`,
		`cp foo bar\`,
		`-DNAME="unterminated`,
		`-I$HOME/include`,
		`*.o`,
	} {
		args, err := Split(cmdline)
		if err == nil {
			t.Errorf("Split(%q)=%q, %v; want err", cmdline, args, err)
		}
	}
}

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"clang++", "-c", "/src/main.cc", "-o", "/obj/main.o"},
			want: "clang++ -c /src/main.cc -o /obj/main.o",
		},
		{
			args: []string{"clang++", "-DNAME=\"x y\"", "/src/my file.cc"},
			want: `clang++ -DNAME=\"x\ y\" /src/my\ file.cc`,
		},
		{
			args: []string{"clang++", "", "-I/src/(gen)"},
			want: `clang++ "" -I/src/\(gen\)`,
		},
	} {
		got := Join(tc.args)
		if got != tc.want {
			t.Errorf("Join(%q)=%q; want %q", tc.args, got, tc.want)
		}
		args, err := Split(got)
		if err != nil {
			t.Errorf("Split(%q)=_, %v; want nil err", got, err)
		}
		if diff := cmp.Diff(tc.args, args); diff != "" {
			t.Errorf("Split(Join(%q)) diff -want +got:\n%s", tc.args, diff)
		}
	}
}
