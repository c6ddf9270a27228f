// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui reports progress of cxxbuild commands, either on a terminal
// or to the log.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// Spinner reports a long operation.
type Spinner interface {
	// Start starts the spinner with the formatted message.
	Start(format string, args ...any)
	// Stop stops the spinner, reporting err if not nil.
	Stop(err error)
}

// UI is a user interface.
type UI interface {
	// PrintLines prints message lines.
	// If msgs starts with "\n", it prints from the current line and
	// keeps the lines. Otherwise, it replaces the last len(msgs) lines.
	PrintLines(msgs ...string)

	// NewSpinner returns a new spinner.
	NewSpinner() Spinner
}

// Default is the UI for stdout. It is set in init.
var Default UI

func init() {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		Default = LogUI{}
		return
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	Default = &TermUI{width: width}
}

// Styles of messages. lipgloss renders them as plain text when stdout
// is not a terminal.
var (
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// elideMiddle elides the middle of msg to fit in width.
// Escape sequences are dropped when msg is elided.
func elideMiddle(msg string, width int) string {
	const marker = "..."
	plain := []rune(ansi.Strip(msg))
	if len(plain) < width || width <= len(marker)+1 {
		return msg
	}
	n := (width - len(marker) - 1) / 2
	return string(plain[:n]) + marker + string(plain[len(plain)-n:])
}
