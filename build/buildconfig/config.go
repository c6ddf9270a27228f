// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildconfig provides link config for `cxxbuild link`.
//
// A config is a Starlark file that defines `init(ctx)`.
// `init` returns `module(target=..., link_hooks=[...])`.
//
//	def init(ctx):
//	    return module(
//	        "config",
//	        target = ctx.flags.get("target", "macos"),
//	        link_hooks = [weak_foundation],
//	    )
//
//	def weak_foundation(dep):
//	    if dep.framework and dep.name == "Foundation":
//	        return dependency(dep.name, framework=True, link_type="weak")
//	    return None
//
// A link hook takes a `dependency` and returns a new `dependency`, or
// None to keep it as is. `dep.name` is the base name of a library file
// (e.g. "libfoo.a") or a framework name, and `dep.path` is the library
// path. A hook can't change them.
package buildconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/cxxbuild/linkspec"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

const configEntryPoint = "init"

// Config is a link config.
type Config struct {
	// Target is the target platform selected by the config.
	// Empty if the config doesn't select one.
	Target gccutil.Target

	// Hooks are link hooks registered by the config, in order.
	Hooks []linkspec.Hook
}

// Load loads the config in fname and runs `init` with flags.
// repos are Starlark repositories that can be loaded by
// `load("@<repo>//<file>", ...)`.
func Load(ctx context.Context, fname string, flags map[string]string, repos map[string]fs.FS) (*Config, error) {
	fname, err := filepath.Abs(fname)
	if err != nil {
		return nil, err
	}
	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	loader := &repoLoader{
		repos:       repos,
		predeclared: builtinModule(),
	}
	thread := &starlark.Thread{
		Name: "load",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: loader.Load,
	}
	thread.SetLocal("modulename", filepath.ToSlash(fname))
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()
	globals, err := loader.Load(thread, filepath.Base(fname))
	if err != nil {
		log.Warnf("thread:%s failed to exec file %s: %v", thread.Name, fname, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, err
	}
	fun, ok := globals[configEntryPoint]
	if !ok {
		return nil, fmt.Errorf("%s is not defined in %s", configEntryPoint, fname)
	}
	if _, ok := fun.(starlark.Callable); !ok {
		return nil, fmt.Errorf("%s %s is not callable in %s", configEntryPoint, fun.Type(), fname)
	}
	return initConfig(fun, flags)
}

// HandlerError is error of a Starlark function in config.
type HandlerError struct {
	entry string
	fn    starlark.Value
	err   *starlark.EvalError
}

func (e HandlerError) Error() string {
	if fn, ok := e.fn.(*starlark.Function); ok {
		return fmt.Sprintf("failed to run %s[%s:%s]: %v", e.entry, fn.Position(), fn.Name(), e.err)
	}
	return fmt.Sprintf("failed to run %s[%s]: %v", e.entry, e.fn, e.err)
}

func (e HandlerError) Backtrace() string {
	return e.err.CallStack.String()
}

func (e HandlerError) Unwrap() error {
	return e.err
}

func newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load is not allowed in %s", name)
		},
	}
}

// call calls fn with args on a new thread.
func call(entry string, fn starlark.Value, args ...starlark.Value) (starlark.Value, error) {
	thread := newThread(entry)
	ret, err := starlark.Call(thread, fn, args, nil)
	if err != nil {
		log.Warnf("thread:%s failed to run %s: %v", thread.Name, entry, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
			return nil, HandlerError{entry: entry, fn: fn, err: eerr}
		}
		return nil, fmt.Errorf("failed to run %s: %w", entry, err)
	}
	return ret, nil
}

// initConfig runs `init` and converts its result to Config.
func initConfig(fun starlark.Value, flags map[string]string) (*Config, error) {
	hctx := starlarkstruct.FromStringDict(starlark.String("ctx"), map[string]starlark.Value{
		"flags": starFlags(flags),
	})
	ret, err := call(configEntryPoint, fun, hctx)
	if err != nil {
		return nil, err
	}
	m, ok := ret.(*starlarkstruct.Module)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want module", configEntryPoint, ret.Type())
	}
	cfg := &Config{}
	if v, ok := m.Members["target"]; ok && v != starlark.None {
		s, ok := starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("target %s, want string", v.Type())
		}
		cfg.Target, err = gccutil.ParseTarget(s)
		if err != nil {
			return nil, fmt.Errorf("bad target in config: %w", err)
		}
	}
	if v, ok := m.Members["link_hooks"]; ok && v != starlark.None {
		cfg.Hooks, err = unpackHooks(v)
		if err != nil {
			return nil, fmt.Errorf("bad link_hooks: %w", err)
		}
	}
	log.Infof("config: target=%q link_hooks=%d", cfg.Target, len(cfg.Hooks))
	return cfg, nil
}

// unpackHooks converts a list of Starlark functions to link hooks.
func unpackHooks(v starlark.Value) ([]linkspec.Hook, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("got %s; want list", v.Type())
	}
	defer iter.Done()
	var hooks []linkspec.Hook
	var fn starlark.Value
	for i := 0; iter.Next(&fn); i++ {
		if _, ok := fn.(starlark.Callable); !ok {
			return nil, fmt.Errorf("link_hooks[%d] %s is not callable", i, fn.Type())
		}
		hooks = append(hooks, starHook(fmt.Sprintf("link_hooks[%d]", i), fn))
	}
	return hooks, nil
}

// starHook returns a link hook that calls Starlark function fn.
// fn is frozen, so the hook may be called from any goroutine.
func starHook(entry string, fn starlark.Value) linkspec.Hook {
	return func(dep linkspec.Dependency) (linkspec.Dependency, error) {
		ret, err := call(entry, fn, packDependency(dep))
		if err != nil {
			return dep, err
		}
		if ret == starlark.None {
			return dep, nil
		}
		return unpackDependency(ret)
	}
}
