// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compile is compile subcommand to compile sources of a compile task.
package compile

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/cxxbuild/build"
	"go.chromium.org/infra/build/cxxbuild/cppmodules"
	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/execute/localexec"
	"go.chromium.org/infra/build/cxxbuild/runtimex"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/shutil"
	"go.chromium.org/infra/build/cxxbuild/ui"
)

const usage = `compile sources of a compile task.

 $ cxxbuild compile -spec compile.json [-schema p1689.json] [-j N] [-n] [-deps]

compile.json is a JSON of a compile task:

 {
   "tool": "clang++",
   "args": ["-std=c++20", "-O2"],
   "sources": ["hello.cppm", "main.cc"],
   "object_dir": "obj"
 }

p1689.json is a module dependency file generated by
'clang-scan-deps -format=p1689'. If it is given, sources are
compiled one by one in the order of the compile task.

With -deps, it runs the compiler with -M for each source instead of
compiling, and prints make-style header deps.
`

// Cmd returns the Command for the `compile` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "compile -spec <compile.json> [-schema <p1689.json>]",
		ShortDesc: "compile sources",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	spec        string
	schema      string
	jobs        int
	extraArgs   string
	dryRun      bool
	deps        bool
	metricsFile string
}

func (c *run) init() {
	c.Flags.StringVar(&c.spec, "spec", "", "compile task json file")
	c.Flags.StringVar(&c.schema, "schema", "", "p1689 module dependency json file")
	c.Flags.IntVar(&c.jobs, "j", 0, "run N jobs in parallel. 0 means the number of CPUs")
	c.Flags.StringVar(&c.extraArgs, "args", "", "additional compiler args in a command line, appended to args of the task")
	c.Flags.BoolVar(&c.dryRun, "n", false, "dry run. print commands without running them")
	c.Flags.BoolVar(&c.deps, "deps", false, "print header deps of sources instead of compiling them")
	c.Flags.StringVar(&c.metricsFile, "metrics", "", "write metrics in prometheus text format to the file")
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
	if c.spec == "" {
		return fmt.Errorf("missing -spec: %w", flag.ErrHelp)
	}
	spec, err := build.LoadCompileSpec(c.spec)
	if err != nil {
		return err
	}
	extra, err := shutil.Split(c.extraArgs)
	if err != nil {
		return fmt.Errorf("bad -args: %w", err)
	}
	spec.Args = append(spec.Args, extra...)
	if c.schema != "" {
		spec.ModuleSchema, err = cppmodules.LoadP1689(c.schema)
		if err != nil {
			return err
		}
	}

	var executor execute.Executor = localexec.LocalExec{}
	if c.dryRun {
		executor = &execute.Recorder{}
	}
	progress := ui.NewProgress(ui.Default, len(spec.Sources))
	executor = progress.Executor(executor)
	reg := prometheus.NewRegistry()
	metrics, err := build.NewMetrics(reg)
	if err != nil {
		return err
	}
	b := build.New(execute.NewQueue(executor, runtimex.Jobs(c.jobs)), build.Options{Metrics: metrics})

	compile := b.Compile
	if c.deps {
		compile = b.Deps
	}
	result, err := compile(ctx, spec)
	fmt.Println(progress.Summary())
	if werr := writeMetrics(c.metricsFile, reg); werr != nil {
		log.Warnf("failed to write metrics: %v", werr)
	}
	if err != nil {
		var ierr *build.InvocationError
		if errors.As(err, &ierr) {
			os.Stderr.Write(ierr.Cmd.Stderr())
		}
		return err
	}
	for _, cmd := range result.Cmds {
		fmt.Println(cmd.Command())
		os.Stdout.Write(cmd.Stdout())
		os.Stderr.Write(cmd.Stderr())
	}
	if !result.DidWork {
		fmt.Println("cxxbuild: no work to do")
	}
	return nil
}

func writeMetrics(fname string, g prometheus.Gatherer) error {
	if fname == "" {
		return nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = build.DumpMetrics(f, g)
	cerr := f.Close()
	if err != nil {
		return err
	}
	return cerr
}
