// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows"
)

var consoleMode uint32

// Init enables virtual terminal processing of stdout for ANSI escape sequence.
func Init() {
	var mode uint32
	h := windows.Handle(os.Stdout.Fd())
	err := windows.GetConsoleMode(h, &mode)
	if err != nil {
		log.Debugf("GetConsoleMode %v", err)
		return
	}
	consoleMode = mode
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return
	}
	err = windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	if err != nil {
		log.Warnf("SetConsoleMode 0x%x: %v", mode, err)
	}
}

// Restore restores the stdout settings.
func Restore() {
	if consoleMode == 0 {
		return
	}
	err := windows.SetConsoleMode(windows.Handle(os.Stdout.Fd()), consoleMode)
	if err != nil {
		log.Warnf("SetConsoleMode 0x%x: %v", consoleMode, err)
	}
}
