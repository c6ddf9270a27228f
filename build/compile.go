// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.chromium.org/infra/build/cxxbuild/cppmodules"
	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/o11y/clog"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

// CompileSpec is a spec of a compile task.
type CompileSpec struct {
	// Tool is the compiler driver, e.g. "clang++".
	Tool string `json:"tool"`

	// Args are args passed to all invocations.
	Args []string `json:"args,omitempty"`

	// Env is the environment of invocations.
	Env []string `json:"env,omitempty"`

	// Dir is the working directory of invocations.
	// Relative paths in the task are relative to Dir.
	Dir string `json:"dir,omitempty"`

	// Sources are source files to compile, in order.
	Sources []string `json:"sources"`

	// ObjectDir is a directory for object files.
	ObjectDir string `json:"object_dir"`

	// ObjectExt is an extension of object files. Default is ".o".
	ObjectExt string `json:"object_ext,omitempty"`

	// PrecompiledHeader is a header that is precompiled for PCHSources.
	PrecompiledHeader string `json:"precompiled_header,omitempty"`

	// PCHSources are sources that use PrecompiledHeader.
	PCHSources []string `json:"pch_sources,omitempty"`

	// ModuleSchema is the module dependency schema of sources.
	// If nil, sources are compiled as ordinary translation units.
	ModuleSchema *cppmodules.Schema `json:"-"`
}

// LoadCompileSpec loads a compile task from fname.
// If Dir is not set in the file, the directory of fname is used.
func LoadCompileSpec(fname string) (*CompileSpec, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	s := &CompileSpec{}
	err = json.Unmarshal(buf, s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	if s.Dir == "" {
		s.Dir, err = filepath.Abs(filepath.Dir(fname))
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CompileResult is a result of a compile task.
type CompileResult struct {
	// Cmds are invocations in source order.
	Cmds []*execute.Cmd

	// ObjectFiles are outputs of Cmds.
	ObjectFiles []string

	// DidWork is true if there is any source to compile.
	DidWork bool
}

// Compile compiles all sources of spec.
//
// If spec has a module schema, it runs invocations one by one and stops
// at the first failure. Otherwise, it submits all invocations at once,
// waits for all of them, and returns errors of failed invocations.
func (b *Builder) Compile(ctx context.Context, spec *CompileSpec) (*CompileResult, error) {
	ctx = clog.NewSpan(ctx, map[string]string{"task": "compile"})
	result := &CompileResult{
		Cmds:    make([]*execute.Cmd, 0, len(spec.Sources)),
		DidWork: len(spec.Sources) > 0,
	}
	for _, src := range spec.Sources {
		cmd, err := newCompileCmd(ctx, spec, src)
		if err != nil {
			return nil, err
		}
		result.Cmds = append(result.Cmds, cmd)
		result.ObjectFiles = append(result.ObjectFiles, cmd.Outputs...)
	}

	if spec.ModuleSchema != nil {
		err := b.runSerial(ctx, result.Cmds)
		if err != nil {
			return nil, fmt.Errorf("module compile: %w", err)
		}
		return result, nil
	}
	err := b.runConcurrent(ctx, result.Cmds)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deps runs header deps invocations for all sources of spec.
// Stdout of each cmd in the result has make-style deps of the source.
// Invocations run in the same manner as Compile, but write no object file.
func (b *Builder) Deps(ctx context.Context, spec *CompileSpec) (*CompileResult, error) {
	ctx = clog.NewSpan(ctx, map[string]string{"task": "deps"})
	result := &CompileResult{
		Cmds:    make([]*execute.Cmd, 0, len(spec.Sources)),
		DidWork: len(spec.Sources) > 0,
	}
	for _, src := range spec.Sources {
		cmd, err := newCompileCmd(ctx, spec, src)
		if err != nil {
			return nil, err
		}
		result.Cmds = append(result.Cmds, &execute.Cmd{
			ID:         execute.NewID(),
			Desc:       "scanning deps of " + filepath.Base(src),
			ActionName: "cxx_deps",
			Args:       cmd.DepsArgs,
			Env:        cmd.Env,
			Dir:        cmd.Dir,
		})
	}
	if spec.ModuleSchema != nil {
		err := b.runSerial(ctx, result.Cmds)
		if err != nil {
			return nil, fmt.Errorf("module deps: %w", err)
		}
		return result, nil
	}
	err := b.runConcurrent(ctx, result.Cmds)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runSerial runs cmds one by one and stops at the first failure.
func (b *Builder) runSerial(ctx context.Context, cmds []*execute.Cmd) error {
	for _, cmd := range cmds {
		b.logSubmit(ctx, cmd)
		err := b.run(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

// runConcurrent submits all cmds at once, and waits for all of them.
func (b *Builder) runConcurrent(ctx context.Context, cmds []*execute.Cmd) error {
	tokens := make([]*execute.Token, 0, len(cmds))
	for _, cmd := range cmds {
		b.logSubmit(ctx, cmd)
		tokens = append(tokens, b.queue.Submit(ctx, cmd))
	}
	var errs []error
	for _, t := range tokens {
		err := t.Wait(ctx)
		if err != nil {
			b.metrics.failed(t.Cmd())
			errs = append(errs, &InvocationError{Cmd: t.Cmd(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// newCompileCmd creates a compile invocation for src.
func newCompileCmd(ctx context.Context, spec *CompileSpec, src string) (*execute.Cmd, error) {
	src, err := absPath(spec.Dir, src)
	if err != nil {
		return nil, err
	}
	objDir, err := absPath(spec.Dir, spec.ObjectDir)
	if err != nil {
		return nil, err
	}
	ext := spec.ObjectExt
	if ext == "" {
		ext = ".o"
	}

	var (
		output      string
		precompile  bool
		lang        string
		moduleFlags []string
	)
	schema := spec.ModuleSchema
	if schema != nil {
		var rule *cppmodules.Rule
		unit, err := schema.UnitForSourceFile(src)
		switch {
		case err == nil:
			r := schema.Rule(unit)
			rule = &r
			output = r.PrimaryOutput
			if unit.IsInterface {
				precompile = true
				lang = gccutil.ModuleLanguage(src)
			}
		case errors.Is(err, cppmodules.ErrNotFound):
			clog.Infof(ctx, "%s is not a module unit. compile as an ordinary translation unit", src)
		default:
			return nil, err
		}
		if output == "" {
			output = ObjectPath(objDir, src, ext)
		}
		if rule == nil {
			// A translation unit that only imports modules has
			// a rule for its output, but provides no unit.
			r, err := schema.RuleForOutputFile(output)
			switch {
			case err == nil:
				rule = &r
			case errors.Is(err, cppmodules.ErrNotFound):
			default:
				return nil, err
			}
		}
		if rule != nil {
			moduleFlags, err = schema.RequiredFlags(*rule)
			if err != nil {
				return nil, fmt.Errorf("module flags for %s: %w", src, err)
			}
		}
	} else {
		output = ObjectPath(objDir, src, ext)
	}
	err = ensureDir(output)
	if err != nil {
		return nil, err
	}

	var pchArgs []string
	if spec.PrecompiledHeader != "" && usesPCH(spec, src) {
		header, err := absPath(spec.Dir, spec.PrecompiledHeader)
		if err != nil {
			return nil, err
		}
		pchArgs = gccutil.PCHArgs(header)
	}

	args := make([]string, 0, 1+len(spec.Args)+len(pchArgs)+len(moduleFlags)+6)
	args = append(args, spec.Tool)
	args = append(args, spec.Args...)
	args = append(args, pchArgs...)
	args = append(args, gccutil.SourceArgs(src, precompile, lang, moduleFlags)...)
	args = append(args, gccutil.OutputArgs(output)...)

	cmd := &execute.Cmd{
		ID:         execute.NewID(),
		Desc:       "compiling " + filepath.Base(src),
		ActionName: "cxx",
		Args:       args,
		Env:        spec.Env,
		Dir:        spec.Dir,
		Outputs:    []string{output},
	}
	if precompile {
		cmd.Desc = "precompiling " + filepath.Base(src)
		cmd.ActionName = "cxx_module"
	}
	cmd.DepsArgs = gccutil.DepsArgs(args)
	return cmd, nil
}

func (b *Builder) logSubmit(ctx context.Context, cmd *execute.Cmd) {
	b.metrics.invoked(cmd)
	ctx = clog.NewSpan(ctx, map[string]string{logLabelKeyID: cmd.ID})
	clog.Infof(ctx, "%s: %s", cmd.Desc, cmd.Command())
}

func usesPCH(spec *CompileSpec, src string) bool {
	return slices.ContainsFunc(spec.PCHSources, func(s string) bool {
		p, err := absPath(spec.Dir, s)
		return err == nil && p == src
	})
}
