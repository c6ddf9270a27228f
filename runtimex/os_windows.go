// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package runtimex

import "golang.org/x/sys/windows"

const allProcessorGroups = 0xFFFF

var procGetActiveProcessorCount = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetActiveProcessorCount")

// activeProcessorCount returns the number of processors in all
// processor groups, or 0 if unknown.
func activeProcessorCount() int {
	if procGetActiveProcessorCount.Find() != nil {
		return 0
	}
	n, _, _ := procGetActiveProcessorCount.Call(allProcessorGroups)
	return int(n)
}
