// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"runtime"

	starjson "go.starlark.net/lib/json"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/cxxbuild/runtimex"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

// builtinModule returns predeclared values of config files.
//
//	runtime: os, arch, num_cpu and host target.
//	path: path manipulation.
//	json: json encode/decode.
//	struct(**kwargs), module(name, **kwargs)
//	dependency(name, whole_archive=False, framework=False, link_type="strong")
func builtinModule() starlark.StringDict {
	runtimeModule := &starlarkstruct.Module{
		Name: "runtime",
		Members: map[string]starlark.Value{
			"num_cpu": starlark.MakeInt(runtimex.NumCPU()),
			"os":      starlark.String(runtime.GOOS),
			"arch":    starlark.String(runtime.GOARCH),
			"target":  starlark.String(gccutil.HostTarget()),
		},
	}
	runtimeModule.Freeze()

	return starlark.StringDict{
		"runtime":    runtimeModule,
		"path":       starPath(),
		"json":       starjson.Module,
		"struct":     starlark.NewBuiltin("struct", starlarkstruct.Make),
		"module":     starlark.NewBuiltin("module", starlarkstruct.MakeModule),
		"dependency": starlark.NewBuiltin("dependency", starDependency),
	}
}
