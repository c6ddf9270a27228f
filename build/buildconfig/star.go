// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/cxxbuild/linkspec"
)

const (
	// base name of a library file or framework name. string
	depFieldName = "name"
	// library path. empty for frameworks. string
	depFieldPath = "path"
	// dependency is linked as whole archive. bool
	depFieldWholeArchive = "whole_archive"
	// dependency is a framework. bool
	depFieldFramework = "framework"
	// dependency link type. "strong", "weak" or "upward"
	depFieldLinkType = "link_type"
)

const dependencyConstructor = starlark.String("dependency")

// packDependency packs dep into Starlark struct.
func packDependency(dep linkspec.Dependency) *starlarkstruct.Struct {
	return starlarkstruct.FromStringDict(dependencyConstructor, map[string]starlark.Value{
		depFieldName:         starlark.String(dep.Name),
		depFieldPath:         starlark.String(dep.Path),
		depFieldWholeArchive: starlark.Bool(dep.WholeArchive),
		depFieldFramework:    starlark.Bool(dep.Framework),
		depFieldLinkType:     starlark.String(dep.LinkType.String()),
	})
}

// unpackDependency unpacks Starlark struct made by `dependency`.
func unpackDependency(v starlark.Value) (linkspec.Dependency, error) {
	s, ok := v.(*starlarkstruct.Struct)
	if !ok || s.Constructor() != dependencyConstructor {
		return linkspec.Dependency{}, fmt.Errorf("got %s; want dependency", v.Type())
	}
	var dep linkspec.Dependency
	var err error
	dep.Name, err = structString(s, depFieldName)
	if err != nil {
		return dep, err
	}
	dep.Path, err = structString(s, depFieldPath)
	if err != nil {
		return dep, err
	}
	dep.WholeArchive, err = structBool(s, depFieldWholeArchive)
	if err != nil {
		return dep, err
	}
	dep.Framework, err = structBool(s, depFieldFramework)
	if err != nil {
		return dep, err
	}
	lt, err := structString(s, depFieldLinkType)
	if err != nil {
		return dep, err
	}
	dep.LinkType, err = linkspec.ParseLinkType(lt)
	return dep, err
}

func structString(s *starlarkstruct.Struct, name string) (string, error) {
	v, err := s.Attr(name)
	if err != nil {
		return "", err
	}
	str, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("%s: got %s; want string", name, v.Type())
	}
	return str, nil
}

func structBool(s *starlarkstruct.Struct, name string) (bool, error) {
	v, err := s.Attr(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(starlark.Bool)
	if !ok {
		return false, fmt.Errorf("%s: got %s; want bool", name, v.Type())
	}
	return bool(b), nil
}

// Starlark function `dependency(name, path="", whole_archive=False, framework=False, link_type="strong")`
// to make a dependency descriptor for link hooks.
// name and path of a hook's result are ignored.
func starDependency(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, path string
	var wholeArchive, framework bool
	linkType := linkspec.Strong.String()
	err := starlark.UnpackArgs("dependency", args, kwargs,
		"name", &name,
		"path?", &path,
		"whole_archive?", &wholeArchive,
		"framework?", &framework,
		"link_type?", &linkType)
	if err != nil {
		return starlark.None, err
	}
	lt, err := linkspec.ParseLinkType(linkType)
	if err != nil {
		return starlark.None, fmt.Errorf("dependency: %w", err)
	}
	return packDependency(linkspec.Dependency{
		Name:         name,
		Path:         path,
		WholeArchive: wholeArchive,
		Framework:    framework,
		LinkType:     lt,
	}), nil
}

// Starlark value to access flags.
func starFlags(flags map[string]string) starlark.Value {
	dict := starlark.NewDict(len(flags))
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		dict.SetKey(starlark.String(k), starlark.String(flags[k]))
	}
	dict.Freeze()
	return dict
}
