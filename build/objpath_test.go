// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"path/filepath"
	"testing"
)

func TestObjectPath(t *testing.T) {
	a := ObjectPath("/out/obj", "/src/a/foo.cc", ".o")
	if got := ObjectPath("/out/obj", "/src/a/./foo.cc", ".o"); got != a {
		t.Errorf("ObjectPath is not stable: %q != %q", got, a)
	}
	b := ObjectPath("/out/obj", "/src/b/foo.cc", ".o")
	if a == b {
		t.Errorf("ObjectPath(/src/a/foo.cc)=ObjectPath(/src/b/foo.cc)=%q; want different", a)
	}
	if filepath.Base(a) != "foo.o" {
		t.Errorf("base=%q; want foo.o", filepath.Base(a))
	}
	if filepath.Dir(filepath.Dir(a)) != filepath.Clean("/out/obj") {
		t.Errorf("ObjectPath=%q; want under /out/obj/<hash>", a)
	}
	if h := filepath.Base(filepath.Dir(a)); len(h) != 16 {
		t.Errorf("hash dir=%q; want 16 hex chars", h)
	}
	if got := ObjectPath("/out/obj", "/src/a/foo.cc", ".obj"); filepath.Ext(got) != ".obj" {
		t.Errorf("ObjectPath(.obj)=%q; want .obj ext", got)
	}
}
