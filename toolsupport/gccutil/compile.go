// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc and clang command lines.
package gccutil

import (
	"path/filepath"
	"strings"
)

// Module language passed to -x.
const (
	LangModule         = "c++-module"
	LangPrecompiledPCM = "pcm"
)

// ModuleLanguage returns the language of the module interface source.
func ModuleLanguage(src string) string {
	if filepath.Ext(src) == ".pcm" {
		return LangPrecompiledPCM
	}
	return LangModule
}

// SourceArgs returns args to compile src.
// If precompile is true, it precompiles the module interface src
// in lang, instead of compiling it to an object file.
// moduleFlags are placed before src.
func SourceArgs(src string, precompile bool, lang string, moduleFlags []string) []string {
	args := make([]string, 0, len(moduleFlags)+4)
	if lang != "" {
		args = append(args, "-x", lang)
	}
	if precompile {
		args = append(args, "--precompile")
	} else {
		args = append(args, "-c")
	}
	args = append(args, moduleFlags...)
	return append(args, src)
}

// OutputArgs returns args to write output.
func OutputArgs(output string) []string {
	return []string{"-o", output}
}

// PCHArgs returns args to use the precompiled header.
// gcc and clang look for <header>.gch / <header>.pch next to header,
// so the extension of a precompiled header file is dropped.
func PCHArgs(header string) []string {
	switch filepath.Ext(header) {
	case ".gch", ".pch":
		header = strings.TrimSuffix(header, filepath.Ext(header))
	}
	return []string{"-include", header}
}

// DepsArgs returns command line args to get header deps for args.
func DepsArgs(args []string) []string {
	var dargs []string
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-MD", "-MMD", "-c", "--precompile":
			continue
		case "-MF", "-o":
			skip = true
			continue
		}
		if strings.HasPrefix(arg, "-MF") {
			continue
		}
		if isJoinedOutput(arg) {
			continue
		}
		dargs = append(dargs, arg)
	}
	dargs = append(dargs, "-M")
	return dargs
}

// flags that start with "-o" but don't specify an output.
var notOutputPrefixes = []string{
	"-objcmt-",
	"-objc-",
	"-object",
}

// isJoinedOutput reports whether arg is "-o<file>".
func isJoinedOutput(arg string) bool {
	if len(arg) <= len("-o") || !strings.HasPrefix(arg, "-o") {
		return false
	}
	for _, p := range notOutputPrefixes {
		if strings.HasPrefix(arg, p) {
			return false
		}
	}
	return true
}
