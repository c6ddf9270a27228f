// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package modflags is modflags subcommand to print module flags of a source.
package modflags

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/cxxbuild/cppmodules"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/shutil"
)

const usage = `print -fmodule-file flags to compile a source.

 $ cxxbuild modflags -schema p1689.json -source hello.cc

It prints flags for all modules transitively imported by the source.
If the source is not a module unit, -output can be used to find
the rule of a translation unit that only imports modules.
`

// Cmd returns the Command for the `modflags` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "modflags -schema <p1689.json> -source <file>",
		ShortDesc: "print module flags of a source",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	schema string
	source string
	output string
}

func (c *run) init() {
	c.Flags.StringVar(&c.schema, "schema", "", "p1689 module dependency json file")
	c.Flags.StringVar(&c.source, "source", "", "source file")
	c.Flags.StringVar(&c.output, "output", "", "output file of the source")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context) error {
	if c.schema == "" || (c.source == "" && c.output == "") {
		return fmt.Errorf("missing -schema, -source or -output: %w", flag.ErrHelp)
	}
	schema, err := cppmodules.LoadP1689(c.schema)
	if err != nil {
		return err
	}
	var rule cppmodules.Rule
	switch {
	case c.source != "":
		src, err := filepath.Abs(c.source)
		if err != nil {
			return err
		}
		u, err := schema.UnitForSourceFile(src)
		if err != nil {
			return err
		}
		rule = schema.Rule(u)
	default:
		out, err := filepath.Abs(c.output)
		if err != nil {
			return err
		}
		rule, err = schema.RuleForOutputFile(out)
		if err != nil {
			return err
		}
	}
	flags, err := schema.RequiredFlags(rule)
	if err != nil {
		return err
	}
	fmt.Println(shutil.Join(flags))
	return nil
}
