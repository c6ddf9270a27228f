// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cppmodules

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is returned when module requirements form a cycle.
var ErrCycle = errors.New("module dependency cycle")

// CycleError is an error for a module dependency cycle.
type CycleError struct {
	// Path is the logical module names of the cycle.
	// The first and the last names are the same.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("module dependency cycle: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// ModuleFileFlag returns the clang flag to use the precompiled module
// interface fname for the logical module name.
func ModuleFileFlag(name, fname string) string {
	return fmt.Sprintf("-fmodule-file=%s=%s", name, fname)
}

type walkFrame struct {
	rule int
	next int
	// name is the logical name that led to the rule.
	name string
}

// RequiredFlags returns -fmodule-file flags for all modules
// transitively required by rule.
// The flags are ordered deepest dependency first, and each
// module appears once even if it is reachable by several paths.
// It returns ErrNotFound if a required module is not in the schema,
// and a *CycleError if the requirements form a cycle.
func (s *Schema) RequiredFlags(rule Rule) ([]string, error) {
	root := -1
	if i, ok := s.byOutput[cleanPath(rule.PrimaryOutput)]; ok && rule.PrimaryOutput != "" {
		root = i
	}
	ruleAt := func(i int) Rule {
		if i < 0 {
			return rule
		}
		return s.rules[i]
	}

	var flags []string
	done := make(map[string]bool)
	onStack := map[int]bool{root: true}
	stack := []walkFrame{{rule: root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		r := ruleAt(f.rule)
		if f.next < len(r.Requires) {
			req := r.Requires[f.next]
			f.next++
			if done[req.LogicalName] {
				continue
			}
			u, err := s.UnitByLogicalName(req.LogicalName)
			if err != nil {
				return nil, fmt.Errorf("%s requires %q: %w", ruleName(r), req.LogicalName, err)
			}
			if onStack[u.rule] {
				return nil, &CycleError{Path: cyclePath(stack, ruleAt, u.rule, req.LogicalName)}
			}
			onStack[u.rule] = true
			stack = append(stack, walkFrame{rule: u.rule, name: req.LogicalName})
			continue
		}
		stack = stack[:len(stack)-1]
		delete(onStack, f.rule)
		if f.name == "" || done[f.name] {
			continue
		}
		done[f.name] = true
		if r.PrimaryOutput == "" {
			return nil, fmt.Errorf("module %q has no primary output", f.name)
		}
		flags = append(flags, ModuleFileFlag(f.name, r.PrimaryOutput))
	}
	return flags, nil
}

// cyclePath returns logical names from the frame of rule target to
// the top of stack, closed by name.
func cyclePath(stack []walkFrame, ruleAt func(int) Rule, target int, name string) []string {
	var path []string
	for i := len(stack) - 1; i >= 0; i-- {
		n := stack[i].name
		if n == "" {
			n = ruleName(ruleAt(stack[i].rule))
		}
		path = append(path, n)
		if stack[i].rule == target {
			break
		}
	}
	slices.Reverse(path)
	return append(path, name)
}

// ruleName returns a name of the rule for messages.
func ruleName(r Rule) string {
	if len(r.Provides) > 0 {
		return r.Provides[0].LogicalName
	}
	if r.PrimaryOutput != "" {
		return r.PrimaryOutput
	}
	return "<rule>"
}
