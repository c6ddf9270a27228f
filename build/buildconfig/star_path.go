// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// starPath returns the `path` module for link hooks.
// Paths are returned in slash form.
//
//	path.base(fname)   path.dir(fname)
//	path.ext(fname)    path.stem(fname)
//	path.join(elems...)
//	path.isabs(fname)
//
// e.g. `path.stem("lib/libfoo.a")` is "libfoo".
func starPath() starlark.Value {
	m := &starlarkstruct.Module{
		Name: "path",
		Members: starlark.StringDict{
			"base": pathFunc("base", filepath.Base),
			"dir":  pathFunc("dir", filepath.Dir),
			"ext":  pathFunc("ext", filepath.Ext),
			"stem": pathFunc("stem", func(fname string) string {
				base := filepath.Base(fname)
				return strings.TrimSuffix(base, filepath.Ext(base))
			}),
			"join":  starlark.NewBuiltin("join", starPathJoin),
			"isabs": starlark.NewBuiltin("isabs", starPathIsAbs),
		},
	}
	m.Freeze()
	return m
}

// pathFunc makes a builtin `name(fname)` that returns f(fname).
func pathFunc(name string, f func(string) string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var fname string
		err := starlark.UnpackArgs(fn.Name(), args, kwargs, "fname", &fname)
		if err != nil {
			return starlark.None, err
		}
		return starlark.String(filepath.ToSlash(f(fname))), nil
	})
}

func starPathJoin(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
	}
	elems := make([]string, 0, len(args))
	for i, v := range args {
		s, ok := starlark.AsString(v)
		if !ok {
			return starlark.None, fmt.Errorf("%s: elems[%d] is %s; want string", fn.Name(), i, v.Type())
		}
		elems = append(elems, s)
	}
	return starlark.String(filepath.ToSlash(filepath.Join(elems...))), nil
}

func starPathIsAbs(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var fname string
	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "fname", &fname)
	if err != nil {
		return starlark.None, err
	}
	return starlark.Bool(filepath.IsAbs(fname)), nil
}
