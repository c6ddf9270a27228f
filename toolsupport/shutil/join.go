// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for shell command lines.
package shutil

import "strings"

const specialChars = " \t\"\\;&|<>$#`'*?()"

// Join joins command line args to a single string.
// Args that contain shell special chars are escaped with backslash,
// so that Split(Join(args)) returns args.
func Join(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if arg == "" {
			sb.WriteString(`""`)
			continue
		}
		for _, ch := range arg {
			if strings.ContainsRune(specialChars, ch) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}
