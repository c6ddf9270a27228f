// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	eraseLine = "\r\033[K"
	cursorUp  = "\033[A"
)

// termSpinner redraws the current line with elapsed time until stopped.
type termSpinner struct {
	w       io.Writer
	msg     string
	started time.Time
	stop    chan struct{}
	stopped chan struct{}
}

func (s *termSpinner) Start(format string, args ...any) {
	s.msg = fmt.Sprintf(format, args...)
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go func() {
		defer close(s.stopped)
		frames := []rune(`|/-\`)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "%s%c %6s %s", eraseLine, frames[i%len(frames)], FormatDuration(time.Since(s.started)), s.msg)
			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *termSpinner) Stop(err error) {
	close(s.stop)
	<-s.stopped
	elapsed := FormatDuration(time.Since(s.started))
	if err != nil {
		fmt.Fprintf(s.w, "%s%6s %s %s %v\n", eraseLine, elapsed, s.msg, failedStyle.Render("failed"), err)
		return
	}
	fmt.Fprintf(s.w, "%s%6s %s\n", eraseLine, elapsed, s.msg)
}

// TermUI is a terminal-based UI.
type TermUI struct {
	// width is the terminal width. Lines are not elided if 0.
	width int
}

// PrintLines implements the UI interface.
func (t *TermUI) PrintLines(msgs ...string) {
	var sb strings.Builder
	if len(msgs) > 0 && msgs[0] == "\n" {
		msgs = msgs[1:]
	} else if len(msgs) > 0 {
		sb.WriteString(eraseLine)
		for range len(msgs) - 1 {
			sb.WriteString(cursorUp + eraseLine)
		}
	}
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if t.width > 0 {
			msg = elideMiddle(msg, t.width)
		}
		sb.WriteString(msg)
	}
	io.WriteString(os.Stdout, sb.String())
}

// NewSpinner returns a spinner on stdout.
func (*TermUI) NewSpinner() Spinner {
	return &termSpinner{w: os.Stdout}
}
