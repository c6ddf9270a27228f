// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package link is link subcommand to link a binary.
package link

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/stringmapflag"

	"go.chromium.org/infra/build/cxxbuild/build"
	"go.chromium.org/infra/build/cxxbuild/build/buildconfig"
	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/execute/localexec"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/shutil"
	"go.chromium.org/infra/build/cxxbuild/ui"
)

const usage = `link a binary.

 $ cxxbuild link -spec link.json [-config link.star] [-target macos] [-n]

link.json is a JSON of a link task:

 {
   "tool": "clang++",
   "output": "out/hello",
   "object_files": ["obj/hello.o"],
   "libraries": ["lib/libbase.a"],
   "whole_archives": ["lib/libbase.a"]
 }

link.star is a Starlark config that selects the target and
registers link hooks. See go doc buildconfig.

The target is selected by -target, the config, or the host,
in this order.
`

// Cmd returns the Command for the `link` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "link -spec <link.json> [-config <link.star>]",
		ShortDesc: "link a binary",
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
	config      string
	configFlags stringmapflag.Value
	target      string
	extraArgs   string
	dryRun      bool
	metricsFile string
}

func (c *run) init() {
	c.configFlags = stringmapflag.Value{}
	c.Flags.StringVar(&c.spec, "spec", "", "link task json file")
	c.Flags.StringVar(&c.config, "config", "", "link config starlark file")
	c.Flags.Var(&c.configFlags, "config_flag", "key=value passed to the config as ctx.flags. can be repeated")
	c.Flags.StringVar(&c.target, "target", "", "target os. linux, freebsd, macos, ios or windows")
	c.Flags.StringVar(&c.extraArgs, "args", "", "additional linker args in a command line, appended to args of the task")
	c.Flags.BoolVar(&c.dryRun, "n", false, "dry run. print the link command without running it")
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
	sf, err := build.LoadLinkSpecFile(c.spec)
	if err != nil {
		return err
	}
	extra, err := shutil.Split(c.extraArgs)
	if err != nil {
		return fmt.Errorf("bad -args: %w", err)
	}
	sf.Args = append(sf.Args, extra...)
	cfg := &buildconfig.Config{}
	if c.config != "" {
		flags := maps.Clone(map[string]string(c.configFlags))
		if flags == nil {
			flags = make(map[string]string)
		}
		if c.target != "" {
			flags["target"] = c.target
		}
		cfg, err = buildconfig.Load(ctx, c.config, flags, nil)
		if err != nil {
			return err
		}
	}
	target := gccutil.HostTarget()
	switch {
	case c.target != "":
		target, err = gccutil.ParseTarget(c.target)
		if err != nil {
			return fmt.Errorf("bad -target: %w", err)
		}
	case cfg.Target != "":
		target = cfg.Target
	}
	lb, err := sf.Builder(cfg.Hooks...)
	if err != nil {
		return err
	}

	var executor execute.Executor = localexec.LocalExec{}
	if c.dryRun {
		executor = &execute.Recorder{}
	}
	reg := prometheus.NewRegistry()
	metrics, err := build.NewMetrics(reg)
	if err != nil {
		return err
	}
	b := build.New(execute.NewQueue(executor, 1), build.Options{Metrics: metrics})
	cmd, err := b.Link(ctx, sf.Tool, sf.Dir, lb.Freeze(), target)
	if err != nil {
		return err
	}
	d, err := cmd.Digest()
	if err != nil {
		return err
	}
	log.Infof("link command digest %s/%d", d.GetHash(), d.GetSizeBytes())
	fmt.Println(cmd.Command())

	spin := ui.Default.NewSpinner()
	spin.Start("%s", cmd.Desc)
	err = b.RunLink(ctx, cmd)
	spin.Stop(err)
	if werr := writeMetrics(c.metricsFile, reg); werr != nil {
		log.Warnf("failed to write metrics: %v", werr)
	}
	os.Stdout.Write(cmd.Stdout())
	os.Stderr.Write(cmd.Stderr())
	return err
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
