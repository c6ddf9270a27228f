// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
// Unlike subcommands.CmdHelp, top-level help also lists global flags.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and global flags, or help about a command.\nUse -advanced to list advanced commands too.",
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.Flags.BoolVar(&c.advanced, "advanced", false, "list advanced commands")
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	advanced bool
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	w := a.GetOut()
	subcommands.Usage(w, a, c.advanced)
	fmt.Fprintln(w, "Global flags:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	return 0
}
