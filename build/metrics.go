// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"go.chromium.org/infra/build/cxxbuild/execute"
	"go.chromium.org/infra/build/cxxbuild/toolsupport/gccutil"
)

// Metrics records invocation metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	invocations *prometheus.CounterVec
	failures    prometheus.Counter
	links       *prometheus.CounterVec
}

// NewMetrics creates metrics and registers them to reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cxxbuild_compile_invocations_total",
				Help: "Number of compile invocations by action.",
			},
			[]string{"kind"},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cxxbuild_compile_failures_total",
				Help: "Number of failed invocations.",
			},
		),
		links: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cxxbuild_link_commands_total",
				Help: "Number of link commands by target.",
			},
			[]string{"target"},
		),
	}
	for _, c := range []prometheus.Collector{m.invocations, m.failures, m.links} {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) invoked(cmd *execute.Cmd) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(cmd.ActionName).Inc()
}

func (m *Metrics) failed(*execute.Cmd) {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *Metrics) linked(target gccutil.Target) {
	if m == nil {
		return
	}
	m.links.WithLabelValues(string(target)).Inc()
}

// DumpMetrics writes metrics gathered by g to w in text format.
func DumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		err := enc.Encode(mf)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
