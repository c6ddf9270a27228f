// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectPath returns the object file of src in objDir.
//
// Object files are placed in a subdirectory named by a hash of the
// source directory, so that sources with the same name in different
// directories don't collide:
//
//	<objDir>/<hash of dir of src>/<base of src without ext><ext>
func ObjectPath(objDir, src, ext string) string {
	src = filepath.Clean(src)
	h := sha256.Sum256([]byte(filepath.ToSlash(filepath.Dir(src))))
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(objDir, hex.EncodeToString(h[:8]), base+ext)
}

// ensureDir creates the parent directory of fname.
// It is safe to call concurrently for the same directory.
func ensureDir(fname string) error {
	dir := filepath.Dir(fname)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return nil
}

// absPath returns fname as absolute path, relative to dir if fname is relative.
func absPath(dir, fname string) (string, error) {
	if filepath.IsAbs(fname) {
		return filepath.Clean(fname), nil
	}
	if dir != "" {
		fname = filepath.Join(dir, fname)
	}
	return filepath.Abs(fname)
}
