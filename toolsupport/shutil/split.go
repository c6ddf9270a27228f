// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"fmt"
	"strings"
)

// metaChars are shell chars that need a shell to interpret.
const metaChars = ";&|<>$#`'*?()"

// Split splits a command line into args.
//
// It understands backslash escapes and double quotes, and returns
// an error for a command line that needs a shell, e.g. pipes,
// redirects or variable expansions.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	var inArg, escaped, quoted bool
	for _, ch := range cmdline {
		switch {
		case escaped:
			sb.WriteRune(ch)
			escaped = false
		case quoted:
			if ch == '"' {
				quoted = false
				continue
			}
			sb.WriteRune(ch)
		case ch == '\\':
			escaped = true
			inArg = true
		case ch == '"':
			quoted = true
			inArg = true
		case ch == ' ' || ch == '\t' || ch == '\n':
			if inArg {
				args = append(args, sb.String())
				sb.Reset()
				inArg = false
			}
		case strings.ContainsRune(metaChars, ch):
			return nil, fmt.Errorf("failed to split: cmdline contains shell metachar %c", ch)
		default:
			sb.WriteRune(ch)
			inArg = true
		}
	}
	if escaped {
		return nil, fmt.Errorf("failed to split: cmdline ends with escape")
	}
	if quoted {
		return nil, fmt.Errorf("failed to split: unterminated quote")
	}
	if inArg {
		args = append(args, sb.String())
	}
	return args, nil
}
