// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cppmodules provides the C++20 module dependency schema.
//
// A schema is a set of rules, one per translation unit, as reported by
// a module dependency scanner (e.g. `clang-scan-deps -format=p1689`).
// Each rule names its primary output, the module units it provides and
// the logical modules it requires.
//
// A Schema is built once and never mutated afterwards, so it is safe to
// share it between goroutines.
package cppmodules

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by lookups when no entity matches.
// It is not an error for callers compiling a translation unit
// that doesn't belong to any module.
var ErrNotFound = errors.New("not found in module schema")

// Requirement is a logical module required by a rule.
type Requirement struct {
	LogicalName string
	SourcePath  string
}

// Rule is a module dependency rule of a translation unit.
type Rule struct {
	// PrimaryOutput is the output file of the translation unit,
	// i.e. the precompiled module interface or the object file.
	PrimaryOutput string

	// Provides are the module units the translation unit provides.
	Provides []Unit

	// Requires are the logical modules the translation unit imports.
	Requires []Requirement
}

// Unit is a module unit.
type Unit struct {
	LogicalName string
	SourcePath  string

	// IsInterface is true for module interface units, false
	// for module implementation units.
	IsInterface bool

	// rule is an index of the owning rule in Schema.rules.
	rule int
}

// Schema is an immutable module dependency graph.
type Schema struct {
	rules []Rule

	byLogicalName map[string]int // -> index in units
	bySource      map[string]int // -> index in units
	byOutput      map[string]int // -> index in rules
	units         []Unit
}

// NewSchema creates a schema from rules.
// It returns error if a logical name, a source path or a primary output
// is provided by more than one unit or rule.
func NewSchema(rules []Rule) (*Schema, error) {
	s := &Schema{
		rules:         make([]Rule, 0, len(rules)),
		byLogicalName: make(map[string]int),
		bySource:      make(map[string]int),
		byOutput:      make(map[string]int),
	}
	for i, r := range rules {
		rule := Rule{
			PrimaryOutput: cleanPath(r.PrimaryOutput),
			Requires:      make([]Requirement, 0, len(r.Requires)),
		}
		for _, req := range r.Requires {
			rule.Requires = append(rule.Requires, Requirement{
				LogicalName: req.LogicalName,
				SourcePath:  cleanPath(req.SourcePath),
			})
		}
		for _, u := range r.Provides {
			unit := Unit{
				LogicalName: u.LogicalName,
				SourcePath:  cleanPath(u.SourcePath),
				IsInterface: u.IsInterface,
				rule:        i,
			}
			if unit.LogicalName == "" {
				return nil, fmt.Errorf("rule %d (%s): unit %q without logical name", i, rule.PrimaryOutput, unit.SourcePath)
			}
			if j, ok := s.byLogicalName[unit.LogicalName]; ok {
				return nil, fmt.Errorf("module %q provided by %s and %s", unit.LogicalName, s.units[j].SourcePath, unit.SourcePath)
			}
			s.byLogicalName[unit.LogicalName] = len(s.units)
			if unit.SourcePath != "" {
				if j, ok := s.bySource[unit.SourcePath]; ok {
					return nil, fmt.Errorf("source %s provides module %q and %q", unit.SourcePath, s.units[j].LogicalName, unit.LogicalName)
				}
				s.bySource[unit.SourcePath] = len(s.units)
			}
			s.units = append(s.units, unit)
			rule.Provides = append(rule.Provides, unit)
		}
		if rule.PrimaryOutput != "" {
			if j, ok := s.byOutput[rule.PrimaryOutput]; ok {
				return nil, fmt.Errorf("output %q of rule %d already produced by rule %d", rule.PrimaryOutput, i, j)
			}
			s.byOutput[rule.PrimaryOutput] = i
		}
		s.rules = append(s.rules, rule)
	}
	return s, nil
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// Rules returns all rules of the schema.
// The returned slice must not be modified.
func (s *Schema) Rules() []Rule {
	return s.rules
}

// UnitByLogicalName returns the unit that provides the logical module name.
func (s *Schema) UnitByLogicalName(name string) (Unit, error) {
	i, ok := s.byLogicalName[name]
	if !ok {
		return Unit{}, fmt.Errorf("module %q: %w", name, ErrNotFound)
	}
	return s.units[i], nil
}

// UnitForSourceFile returns the unit whose source is fname.
func (s *Schema) UnitForSourceFile(fname string) (Unit, error) {
	i, ok := s.bySource[cleanPath(fname)]
	if !ok {
		return Unit{}, fmt.Errorf("source %s: %w", fname, ErrNotFound)
	}
	return s.units[i], nil
}

// RuleForOutputFile returns the rule whose primary output is fname.
func (s *Schema) RuleForOutputFile(fname string) (Rule, error) {
	i, ok := s.byOutput[cleanPath(fname)]
	if !ok {
		return Rule{}, fmt.Errorf("output %s: %w", fname, ErrNotFound)
	}
	return s.rules[i], nil
}

// Rule returns the rule owning u.
// u must be a unit returned by s. For a unit not in s, such as Unit{}
// on an empty schema, it returns a zero Rule.
func (s *Schema) Rule(u Unit) Rule {
	if u.rule < 0 || u.rule >= len(s.rules) {
		return Rule{}
	}
	r := s.rules[u.rule]
	for _, p := range r.Provides {
		if p.LogicalName == u.LogicalName && p.SourcePath == u.SourcePath {
			return r
		}
	}
	return Rule{}
}
