// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/linkspec"
	"go.chromium.org/infra/build/cxxbuild/o11y/clog"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

// LinkSpecFile is a link task in JSON.
type LinkSpecFile struct {
	Tool          string   `json:"tool"`
	Output        string   `json:"output"`
	ObjectFiles   []string `json:"object_files,omitempty"`
	Libraries     []string `json:"libraries,omitempty"`
	LibraryPath   []string `json:"library_path,omitempty"`
	Frameworks    []string `json:"frameworks,omitempty"`
	FrameworkPath []string `json:"framework_path,omitempty"`

	// WholeArchives are libraries linked as whole archives.
	WholeArchives []string `json:"whole_archives,omitempty"`

	SystemArgs  []string `json:"system_args,omitempty"`
	Args        []string `json:"args,omitempty"`
	Shared      bool     `json:"shared,omitempty"`
	InstallName string   `json:"install_name,omitempty"`
	Debuggable  bool     `json:"debuggable,omitempty"`

	// Dir is the working directory of the link command.
	// Relative paths are relative to Dir.
	Dir string `json:"dir,omitempty"`
}

// LoadLinkSpecFile loads a link task from fname.
// If Dir is not set in the file, the directory of fname is used.
func LoadLinkSpecFile(fname string) (*LinkSpecFile, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	s := &LinkSpecFile{}
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

// Builder returns a link spec builder for the file with hooks.
// Paths are resolved relative to Dir.
func (s *LinkSpecFile) Builder(hooks ...linkspec.Hook) (*linkspec.Builder, error) {
	abs := func(files []string) ([]string, error) {
		var r []string
		for _, f := range files {
			p, err := absPath(s.Dir, f)
			if err != nil {
				return nil, err
			}
			r = append(r, p)
		}
		return r, nil
	}
	output, err := absPath(s.Dir, s.Output)
	if err != nil {
		return nil, err
	}
	objs, err := abs(s.ObjectFiles)
	if err != nil {
		return nil, err
	}
	libs, err := abs(s.Libraries)
	if err != nil {
		return nil, err
	}
	wholeArchives, err := abs(s.WholeArchives)
	if err != nil {
		return nil, err
	}
	libPath, err := abs(s.LibraryPath)
	if err != nil {
		return nil, err
	}
	fwPath, err := abs(s.FrameworkPath)
	if err != nil {
		return nil, err
	}
	b := linkspec.NewBuilder(output).
		ObjectFiles(objs...).
		Libraries(libs...).
		LibraryPath(libPath...).
		Frameworks(s.Frameworks...).
		FrameworkPath(fwPath...).
		SystemArgs(s.SystemArgs...).
		Args(s.Args...).
		SetDebuggable(s.Debuggable)
	if len(wholeArchives) > 0 {
		b.WholeArchives(func(lib string) bool {
			return slices.Contains(wholeArchives, lib)
		})
	}
	b.Hook(hooks...)
	if s.Shared {
		b.SetShared(s.InstallName)
	}
	return b, nil
}

// Link returns a command to link spec for target with tool.
func (b *Builder) Link(ctx context.Context, tool, dir string, spec *linkspec.Spec, target gccutil.Target) (*execute.Cmd, error) {
	args, err := gccutil.LinkArgs(spec, target)
	if err != nil {
		return nil, fmt.Errorf("link %s for %s: %w", spec.Output(), target, err)
	}
	cmd := &execute.Cmd{
		ID:         execute.NewID(),
		Desc:       "linking " + filepath.Base(spec.Output()),
		ActionName: "link",
		Args:       append([]string{tool}, args...),
		Dir:        dir,
		Outputs:    []string{spec.Output()},
	}
	b.metrics.linked(target)
	ctx = clog.NewSpan(ctx, map[string]string{logLabelKeyID: cmd.ID})
	clog.Infof(ctx, "%s: %s", cmd.Desc, cmd.Command())
	return cmd, nil
}

// RunLink runs the link command.
func (b *Builder) RunLink(ctx context.Context, cmd *execute.Cmd) error {
	err := ensureDir(cmd.Outputs[0])
	if err != nil {
		return err
	}
	return b.run(ctx, cmd)
}
