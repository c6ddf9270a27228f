// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides the number of CPUs usable by the process.
//
// On Windows, runtime.NumCPU only counts a single processor group
// (up to 64 CPUs), so all active processor groups are counted instead.
package runtimex

import (
	"runtime"
	"sync"
)

var numCPU = sync.OnceValue(func() int {
	if n := activeProcessorCount(); n > 0 {
		return n
	}
	return runtime.NumCPU()
})

// NumCPU returns the number of logical CPUs usable by the current process.
func NumCPU() int {
	return numCPU()
}

// Jobs returns n if n is positive, or NumCPU otherwise.
func Jobs(n int) int {
	if n > 0 {
		return n
	}
	return NumCPU()
}
