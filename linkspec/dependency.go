// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package linkspec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LinkType is a link type of a library or a framework.
type LinkType int

const (
	// Strong dependencies must be present at runtime.
	Strong LinkType = iota
	// Weak dependencies may be missing at runtime.
	Weak
	// Upward dependencies are provided by the loading process.
	// Most usages of this imply that the product is only used with dlopen().
	Upward
)

func (t LinkType) String() string {
	switch t {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	case Upward:
		return "upward"
	}
	return fmt.Sprintf("LinkType(%d)", int(t))
}

// ParseLinkType parses s as a link type.
func ParseLinkType(s string) (LinkType, error) {
	switch strings.ToLower(s) {
	case "strong", "":
		return Strong, nil
	case "weak":
		return Weak, nil
	case "upward":
		return Upward, nil
	}
	return Strong, fmt.Errorf("unknown link type %q", s)
}

// Dependency describes how a library or a framework is linked.
type Dependency struct {
	// Name is the base name of a library file, e.g. "libfoo.a",
	// or a framework name.
	Name string

	// Path is the library path. Empty for frameworks.
	Path string

	WholeArchive bool
	Framework    bool
	LinkType     LinkType
}

// Hook transforms a dependency description.
// Hooks must not keep references to their argument.
type Hook func(Dependency) (Dependency, error)

// ClassifyLibrary returns the dependency description of the library
// file at path, starting from the default (strong, not whole archive)
// and applying hooks in order. Later hooks override earlier ones.
func ClassifyLibrary(path string, hooks []Hook) (Dependency, error) {
	return classify(Dependency{
		Name: filepath.Base(path),
		Path: path,
	}, hooks)
}

// ClassifyFramework returns the dependency description of the framework
// name, applying hooks in order.
func ClassifyFramework(name string, hooks []Hook) (Dependency, error) {
	return classify(Dependency{
		Name:      name,
		Framework: true,
	}, hooks)
}

func classify(base Dependency, hooks []Hook) (Dependency, error) {
	dep := base
	dep.LinkType = Strong
	for i, h := range hooks {
		var err error
		dep, err = h(dep)
		if err != nil {
			return Dependency{}, fmt.Errorf("classify %s: hook %d: %w", base.Name, i, err)
		}
		// hooks may not rename the dependency.
		dep.Name = base.Name
		dep.Path = base.Path
		dep.Framework = base.Framework
	}
	return dep, nil
}
