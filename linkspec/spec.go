// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package linkspec describes what is linked and how.
//
// A Builder accumulates link inputs while a link task is configured.
// Freeze turns it into an immutable Spec that is consumed by a link
// line builder (e.g. toolsupport/gccutil).
package linkspec

import (
	"slices"
)

// Spec is a frozen link specification.
type Spec struct {
	output        string
	objectFiles   []string
	libraries     []string
	libraryPath   []string
	frameworks    []string
	frameworkPath []string
	hooks         []Hook
	systemArgs    []string
	args          []string
	debuggable    bool
	shared        bool
	installName   string
}

// Output returns the output file.
func (s *Spec) Output() string { return s.output }

// ObjectFiles returns object files in link order.
func (s *Spec) ObjectFiles() []string { return slices.Clone(s.objectFiles) }

// Libraries returns library files in link order.
func (s *Spec) Libraries() []string { return slices.Clone(s.libraries) }

// LibraryPath returns library search paths.
func (s *Spec) LibraryPath() []string { return slices.Clone(s.libraryPath) }

// Frameworks returns framework names.
func (s *Spec) Frameworks() []string { return slices.Clone(s.frameworks) }

// FrameworkPath returns framework search paths.
func (s *Spec) FrameworkPath() []string { return slices.Clone(s.frameworkPath) }

// SystemArgs returns toolchain args placed at the beginning of the command line.
func (s *Spec) SystemArgs() []string { return slices.Clone(s.systemArgs) }

// Args returns user args placed at the end of the command line.
func (s *Spec) Args() []string { return slices.Clone(s.args) }

// Debuggable reports whether the output should keep debug info.
func (s *Spec) Debuggable() bool { return s.debuggable }

// Shared reports whether the output is a shared library.
func (s *Spec) Shared() bool { return s.shared }

// InstallName returns install name (or soname) of the shared library.
func (s *Spec) InstallName() string { return s.installName }

// ClassifyLibrary returns the dependency description of the library file.
func (s *Spec) ClassifyLibrary(library string) (Dependency, error) {
	return ClassifyLibrary(library, s.hooks)
}

// ClassifyFramework returns the dependency description of the framework.
func (s *Spec) ClassifyFramework(name string) (Dependency, error) {
	return ClassifyFramework(name, s.hooks)
}

// Builder builds a Spec.
// A Builder must not be used after Freeze.
type Builder struct {
	spec   Spec
	frozen bool
}

// NewBuilder returns a new builder to link output.
func NewBuilder(output string) *Builder {
	return &Builder{
		spec: Spec{output: output},
	}
}

func (b *Builder) check() {
	if b.frozen {
		panic("linkspec: builder used after Freeze")
	}
}

// SetOutput sets output file.
func (b *Builder) SetOutput(output string) *Builder {
	b.check()
	b.spec.output = output
	return b
}

// ObjectFiles appends object files.
func (b *Builder) ObjectFiles(files ...string) *Builder {
	b.check()
	b.spec.objectFiles = append(b.spec.objectFiles, files...)
	return b
}

// Libraries appends library files.
func (b *Builder) Libraries(files ...string) *Builder {
	b.check()
	b.spec.libraries = append(b.spec.libraries, files...)
	return b
}

// LibraryPath appends library search paths.
func (b *Builder) LibraryPath(dirs ...string) *Builder {
	b.check()
	b.spec.libraryPath = append(b.spec.libraryPath, dirs...)
	return b
}

// Frameworks appends frameworks.
func (b *Builder) Frameworks(names ...string) *Builder {
	b.check()
	b.spec.frameworks = append(b.spec.frameworks, names...)
	return b
}

// FrameworkPath appends framework search paths.
func (b *Builder) FrameworkPath(dirs ...string) *Builder {
	b.check()
	b.spec.frameworkPath = append(b.spec.frameworkPath, dirs...)
	return b
}

// Hook registers a classifier hook.
// Hooks run in registration order when dependencies are classified.
func (b *Builder) Hook(hooks ...Hook) *Builder {
	b.check()
	b.spec.hooks = append(b.spec.hooks, hooks...)
	return b
}

// WholeArchives registers a hook that marks libraries whose path
// matches pred as whole archives.
func (b *Builder) WholeArchives(pred func(library string) bool) *Builder {
	return b.Hook(func(dep Dependency) (Dependency, error) {
		if !dep.Framework && pred(dep.Path) {
			dep.WholeArchive = true
		}
		return dep, nil
	})
}

// SystemArgs appends toolchain args.
func (b *Builder) SystemArgs(args ...string) *Builder {
	b.check()
	b.spec.systemArgs = append(b.spec.systemArgs, args...)
	return b
}

// Args appends user args.
func (b *Builder) Args(args ...string) *Builder {
	b.check()
	b.spec.args = append(b.spec.args, args...)
	return b
}

// SetDebuggable sets whether the output keeps debug info.
func (b *Builder) SetDebuggable(debuggable bool) *Builder {
	b.check()
	b.spec.debuggable = debuggable
	return b
}

// SetShared makes the output a shared library with the install name.
// installName may be empty.
func (b *Builder) SetShared(installName string) *Builder {
	b.check()
	b.spec.shared = true
	b.spec.installName = installName
	return b
}

// Freeze returns the immutable Spec.
func (b *Builder) Freeze() *Spec {
	b.check()
	b.frozen = true
	s := b.spec
	s.objectFiles = slices.Clip(s.objectFiles)
	s.libraries = slices.Clip(s.libraries)
	s.libraryPath = slices.Clip(s.libraryPath)
	s.frameworks = slices.Clip(s.frameworks)
	s.frameworkPath = slices.Clip(s.frameworkPath)
	s.hooks = slices.Clip(s.hooks)
	s.systemArgs = slices.Clip(s.systemArgs)
	s.args = slices.Clip(s.args)
	return &s
}
