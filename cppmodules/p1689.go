// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cppmodules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// p1689 is the format of module dependency info described in
// https://wg21.link/p1689r5 and emitted by `clang-scan-deps -format=p1689`.
type p1689 struct {
	Version  int         `json:"version"`
	Revision int         `json:"revision"`
	Rules    []p1689Rule `json:"rules"`
}

type p1689Rule struct {
	PrimaryOutput string         `json:"primary-output"`
	Provides      []p1689Provide `json:"provides"`
	Requires      []p1689Require `json:"requires"`
}

type p1689Provide struct {
	LogicalName string `json:"logical-name"`
	SourcePath  string `json:"source-path"`
	// IsInterface is true if absent.
	IsInterface *bool `json:"is-interface"`
}

type p1689Require struct {
	LogicalName string `json:"logical-name"`
	SourcePath  string `json:"source-path"`
}

// ParseP1689 parses P1689 module dependency info.
// Relative paths are resolved against dir, unless dir is empty.
func ParseP1689(buf []byte, dir string) (*Schema, error) {
	var deps p1689
	err := json.Unmarshal(buf, &deps)
	if err != nil {
		return nil, fmt.Errorf("failed to parse p1689: %w", err)
	}
	abs := func(p string) string {
		if p == "" || dir == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	rules := make([]Rule, 0, len(deps.Rules))
	for _, r := range deps.Rules {
		rule := Rule{
			PrimaryOutput: abs(r.PrimaryOutput),
		}
		for _, p := range r.Provides {
			isInterface := true
			if p.IsInterface != nil {
				isInterface = *p.IsInterface
			}
			rule.Provides = append(rule.Provides, Unit{
				LogicalName: p.LogicalName,
				SourcePath:  abs(p.SourcePath),
				IsInterface: isInterface,
			})
		}
		for _, req := range r.Requires {
			rule.Requires = append(rule.Requires, Requirement{
				LogicalName: req.LogicalName,
				SourcePath:  abs(req.SourcePath),
			})
		}
		rules = append(rules, rule)
	}
	return NewSchema(rules)
}

// LoadP1689 loads P1689 module dependency info from fname.
// Relative paths in the file are relative to the directory of fname.
func LoadP1689(fname string) (*Schema, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(fname))
	if err != nil {
		return nil, err
	}
	s, err := ParseP1689(buf, dir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fname, err)
	}
	return s, nil
}
