// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
)

// moduleRef is a reference to a Starlark file.
// repo is empty for a file on the local disk.
type moduleRef struct {
	repo  string
	fname string
}

func (m moduleRef) String() string {
	if m.repo == "" {
		return m.fname
	}
	return fmt.Sprintf("@%s//%s", m.repo, m.fname)
}

// parseModuleRef parses a full module name made by moduleRef.String.
func parseModuleRef(name string) (moduleRef, error) {
	if !strings.HasPrefix(name, "@") {
		return moduleRef{fname: name}, nil
	}
	repo, fname, ok := strings.Cut(name[1:], "//")
	if !ok || repo == "" || fname == "" {
		return moduleRef{}, fmt.Errorf("failed to parse module: %q", name)
	}
	return moduleRef{repo: repo, fname: fname}, nil
}

// resolve resolves module loaded from cur.
// A module without `@<repo>//` prefix is relative to cur, in cur's repo.
func (cur moduleRef) resolve(module string) (moduleRef, error) {
	if strings.HasPrefix(module, "@") {
		return parseModuleRef(module)
	}
	fname := module
	if !path.IsAbs(fname) {
		fname = path.Join(path.Dir(cur.fname), fname)
	}
	return moduleRef{repo: cur.repo, fname: fname}, nil
}

// loadEntry is a cache entry of a loaded module.
// globals is nil while the module is being loaded.
type loadEntry struct {
	globals starlark.StringDict
	err     error
}

// repoLoader loads Starlark files from the local disk or repositories.
// Each file is executed once.
type repoLoader struct {
	repos       map[string]fs.FS
	predeclared starlark.StringDict

	loaded map[string]*loadEntry
}

var errLoadCycle = errors.New("load cycle")

// Load implements starlark.Thread.Load.
func (r *repoLoader) Load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	cur, err := parseModuleRef(thread.Local("modulename").(string))
	if err != nil {
		return nil, err
	}
	ref, err := cur.resolve(module)
	if err != nil {
		return nil, err
	}
	name := ref.String()
	log.Debugf("load %s from %s", name, cur)
	if r.loaded == nil {
		r.loaded = make(map[string]*loadEntry)
	}
	if e, ok := r.loaded[name]; ok {
		if e.globals == nil && e.err == nil {
			return nil, fmt.Errorf("%w: %s", errLoadCycle, name)
		}
		return e.globals, e.err
	}
	e := &loadEntry{}
	r.loaded[name] = e
	e.globals, e.err = r.exec(ref)
	return e.globals, e.err
}

func (r *repoLoader) exec(ref moduleRef) (starlark.StringDict, error) {
	var buf []byte
	var err error
	if ref.repo != "" {
		fsys, ok := r.repos[ref.repo]
		if !ok {
			return nil, fmt.Errorf("no such repo %q", ref.repo)
		}
		buf, err = fs.ReadFile(fsys, ref.fname)
	} else {
		buf, err = os.ReadFile(ref.fname)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}
	thread := &starlark.Thread{
		Name: "load " + ref.String(),
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: r.Load,
	}
	thread.SetLocal("modulename", ref.String())
	return starlark.ExecFile(thread, ref.String(), buf, r.predeclared)
}
