// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.chromium.org/infra/build/cxxbuild/linkspec"
)

// ErrUnsupportedConfiguration is returned when a link spec uses
// a feature that can't be expressed in gcc link line.
var ErrUnsupportedConfiguration = errors.New("unsupported link configuration")

// LinkArgs returns args of gcc/clang driver (without the driver itself)
// to link spec for the target.
//
// The args are
//
//	<system args> [-shared [<install name>]] -o <output> <objects>...
//	<libraries>... [-F <framework dir>]... [<frameworks>...] <user args>...
//
// Debuggable has no effect on gcc link lines.
func LinkArgs(spec *linkspec.Spec, target Target) ([]string, error) {
	caps := target.Capabilities()
	if libpath := spec.LibraryPath(); len(libpath) > 0 && !caps.LibraryPath {
		return nil, fmt.Errorf("library path %q for %s: %w", libpath, target, ErrUnsupportedConfiguration)
	}
	libs, err := classifyAll(spec.Libraries(), spec.ClassifyLibrary)
	if err != nil {
		return nil, err
	}
	var frameworks []linkspec.Dependency
	if caps.Frameworks {
		frameworks, err = classifyAll(spec.Frameworks(), spec.ClassifyFramework)
		if err != nil {
			return nil, err
		}
	}

	var args []string
	args = append(args, spec.SystemArgs()...)
	if spec.Shared() {
		args = append(args, caps.SharedFlag)
		if name := spec.InstallName(); name != "" && caps.InstallNameFlag != "" {
			args = append(args, caps.InstallNameFlag+name)
		}
	}
	output, err := absPath(spec.Output())
	if err != nil {
		return nil, err
	}
	args = append(args, "-o", output)
	for _, obj := range spec.ObjectFiles() {
		obj, err := absPath(obj)
		if err != nil {
			return nil, err
		}
		args = append(args, obj)
	}

	inWholeArchive := false
	for _, lib := range libs {
		path, err := absPath(lib.Path)
		if err != nil {
			return nil, err
		}
		switch caps.WholeArchive {
		case WholeArchiveForceLoad:
			if lib.WholeArchive {
				args = append(args, "-Wl,-force_load")
			}
		case WholeArchiveBracket:
			if lib.WholeArchive != inWholeArchive {
				if lib.WholeArchive {
					args = append(args, "-Wl,-whole-archive")
				} else {
					args = append(args, "-Wl,-no-whole-archive")
				}
				inWholeArchive = lib.WholeArchive
			}
		}
		args = append(args, libraryArg(caps, lib.LinkType, path))
	}
	if inWholeArchive {
		args = append(args, "-Wl,-no-whole-archive")
	}

	if caps.Frameworks {
		for _, dir := range spec.FrameworkPath() {
			dir, err := absPath(dir)
			if err != nil {
				return nil, err
			}
			args = append(args, "-F", dir)
		}
		for _, fw := range frameworks {
			switch fw.LinkType {
			case linkspec.Weak:
				args = append(args, "-Wl,-weak_framework,"+fw.Name)
			case linkspec.Upward:
				args = append(args, "-Wl,-upward_framework,"+fw.Name)
			default:
				args = append(args, "-framework", fw.Name)
			}
		}
	}
	args = append(args, spec.Args()...)
	return args, nil
}

func classifyAll(names []string, classify func(string) (linkspec.Dependency, error)) ([]linkspec.Dependency, error) {
	deps := make([]linkspec.Dependency, 0, len(names))
	for _, name := range names {
		dep, err := classify(name)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func libraryArg(caps Capabilities, linkType linkspec.LinkType, path string) string {
	if !caps.LinkTypes {
		return path
	}
	switch linkType {
	case linkspec.Weak:
		return "-Wl,-weak_library," + path
	case linkspec.Upward:
		return "-Wl,-upward_library," + path
	}
	return path
}

func absPath(fname string) (string, error) {
	if filepath.IsAbs(fname) {
		return fname, nil
	}
	return filepath.Abs(fname)
}
