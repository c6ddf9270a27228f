// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type logSpinner struct {
	started time.Time
	msg     string
}

// Start reports the start of the operation.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	l.msg = ansi.Strip(fmt.Sprintf(format, args...))
	log.Info(l.msg)
}

// Stop reports how long the operation took.
func (l *logSpinner) Stop(err error) {
	if err != nil {
		log.Warnf("%s -> failed %s %v", l.msg, FormatDuration(time.Since(l.started)), err)
		return
	}
	log.Infof("%s -> done %s", l.msg, FormatDuration(time.Since(l.started)))
}

// LogUI is a log-based UI.
type LogUI struct{}

// PrintLines logs msgs, stripping ansi escape sequence.
func (LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		if msg == "\n" || msg == "" {
			continue
		}
		log.Info(ansi.Strip(msg))
	}
}

// NewSpinner returns a log-based spinner.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}
