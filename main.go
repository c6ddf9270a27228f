// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// cxxbuild compiles and links native binaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/cxxbuild/o11y/clog"
	"go.chromium.org/infra/build/cxxbuild/subcmd/compile"
	"go.chromium.org/infra/build/cxxbuild/subcmd/help"
	"go.chromium.org/infra/build/cxxbuild/subcmd/link"
	"go.chromium.org/infra/build/cxxbuild/subcmd/modflags"
	"go.chromium.org/infra/build/cxxbuild/subcmd/version"
	"go.chromium.org/infra/build/cxxbuild/ui"
)

const cxxbuildVersion = "v0.1.0"

var logLevel = flag.String("log_level", "warn", "log level. debug, info, warn or error")

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(cxxbuildMain(context.Background(), flag.Args()))
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "cxxbuild",
		Title: "build tool to compile and link native binaries",
		Context: func(context.Context) context.Context {
			return clog.NewContext(ctx, clog.New(log.Default()))
		},
		Commands: []*subcommands.Command{
			compile.Cmd(),
			link.Cmd(),
			modflags.Cmd(),

			help.Cmd(),
			version.Cmd(cxxbuildVersion),
		},
	}
}

func cxxbuildMain(ctx context.Context, args []string) int {
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log_level: %v\n", err)
		return 2
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	ui.Init()
	defer ui.Restore()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		for _, m := range buildinfo.Deps {
			log.Debugf("deps module: %s", moduleInfo(m))
		}
	}
	return subcommands.Run(getApplication(ctx), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
