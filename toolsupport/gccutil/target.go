// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"fmt"
	"runtime"
	"strings"
)

// Family is a family of target operating systems that share linker syntax.
type Family int

const (
	// ELF is a family of targets using GNU ld style linkers.
	ELF Family = iota
	// Apple is a family of targets using ld64.
	Apple
	// Windows is a family of Windows targets (mingw).
	Windows
)

func (f Family) String() string {
	switch f {
	case ELF:
		return "elf"
	case Apple:
		return "apple"
	case Windows:
		return "windows"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// WholeArchiveStyle is how a linker is told to load all members of an archive.
type WholeArchiveStyle int

const (
	// WholeArchiveBracket brackets archives with
	// -Wl,-whole-archive and -Wl,-no-whole-archive.
	WholeArchiveBracket WholeArchiveStyle = iota
	// WholeArchiveForceLoad puts -Wl,-force_load before each archive.
	WholeArchiveForceLoad
)

// Capabilities describes link line syntax supported for a target.
type Capabilities struct {
	Family Family

	// SharedFlag is a flag to link a shared library.
	SharedFlag string

	// InstallNameFlag is a prefix of the flag to set install name
	// (or soname) of a shared library. Empty if not supported.
	InstallNameFlag string

	WholeArchive WholeArchiveStyle

	// LinkTypes is true if libraries are qualified by their link type.
	// Otherwise, all libraries are linked by path regardless of the
	// link type.
	LinkTypes bool

	// Frameworks is true if frameworks are supported.
	Frameworks bool

	// LibraryPath is true if library search paths are supported.
	// gcc link lines refer to libraries by path, so it is false for
	// all targets.
	LibraryPath bool
}

var capabilities = map[Family]Capabilities{
	ELF: {
		Family:          ELF,
		SharedFlag:      "-shared",
		InstallNameFlag: "-Wl,-soname,",
		WholeArchive:    WholeArchiveBracket,
	},
	Apple: {
		Family:          Apple,
		SharedFlag:      "-shared",
		InstallNameFlag: "-Wl,-install_name,",
		WholeArchive:    WholeArchiveForceLoad,
		LinkTypes:       true,
		Frameworks:      true,
	},
	Windows: {
		Family:       Windows,
		SharedFlag:   "-shared",
		WholeArchive: WholeArchiveBracket,
	},
}

// Target is a target operating system.
type Target string

const (
	Linux   Target = "linux"
	FreeBSD Target = "freebsd"
	MacOS   Target = "macos"
	IOS     Target = "ios"
	Win     Target = "windows"
)

var targetFamilies = map[Target]Family{
	Linux:   ELF,
	FreeBSD: ELF,
	MacOS:   Apple,
	IOS:     Apple,
	Win:     Windows,
}

// ParseTarget parses s as a target.
// It also accepts GOOS names.
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(s)
	switch s {
	case "darwin", "mac", "osx":
		return MacOS, nil
	}
	t := Target(s)
	if _, ok := targetFamilies[t]; !ok {
		return "", fmt.Errorf("unknown target %q", s)
	}
	return t, nil
}

// HostTarget returns the target of the running host.
// It returns Linux for unknown hosts.
func HostTarget() Target {
	t, err := ParseTarget(runtime.GOOS)
	if err != nil {
		return Linux
	}
	return t
}

// Family returns the family of the target.
func (t Target) Family() Family {
	f, ok := targetFamilies[t]
	if !ok {
		return ELF
	}
	return f
}

// Capabilities returns capabilities of the target.
func (t Target) Capabilities() Capabilities {
	return capabilities[t.Family()]
}
