// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"net/http"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.LogContainer.GetSimpleLogger()

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
}

func (o MetricOpts) fqName() string {
	return prometheus.BuildFQName(o.Namespace, o.Subsystem, o.Name)
}

var (
	FrequencyOpts = MetricOpts{"eam2011", "clock", "frequency_hertz"}
	EnabledOpts   = MetricOpts{"eam2011", "clock", "enabled"}
)

// ClockCollector exports the resolved frequency of every clock and the
// state of every gate each time it is scraped.
type ClockCollector struct {
	tree    *crg.Guarded
	freq    *prometheus.Desc
	enabled *prometheus.Desc
}

func NewClockCollector(g *crg.Guarded) *ClockCollector {
	return &ClockCollector{
		tree: g,
		freq: prometheus.NewDesc(FrequencyOpts.fqName(),
			"Resolved clock frequency",
			[]string{"clock", "parent", "category"}, nil),
		enabled: prometheus.NewDesc(EnabledOpts.fqName(),
			"Whether a gate clock is enabled",
			[]string{"clock"}, nil),
	}
}

func (c *ClockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.freq
	ch <- c.enabled
}

func (c *ClockCollector) Collect(ch chan<- prometheus.Metric) {
	var ms []prometheus.Metric
	// Errors are per clock and logged, one bad divider code must not hide
	// the rest of the tree.
	_ = c.tree.Do(func(t *crg.Tree) error {
		for n := crg.Name(0); n < crg.NumClocks; n++ {
			d, err := t.Lookup(n)
			if err != nil {
				continue
			}
			hz, err := t.GetFreq(n)
			if err != nil {
				log.Debugf("Not exporting %v: %v", n, err)
				continue
			}
			ms = append(ms, prometheus.MustNewConstMetric(c.freq, prometheus.GaugeValue,
				float64(hz), n.String(), d.Parent().String(), d.Category().String()))
			if d.Category() != crg.GateClock {
				continue
			}
			on, err := t.ClockEnabled(n)
			if err != nil {
				continue
			}
			v := 0.0
			if on {
				v = 1
			}
			ms = append(ms, prometheus.MustNewConstMetric(c.enabled, prometheus.GaugeValue, v, n.String()))
		}
		return nil
	})
	for _, m := range ms {
		ch <- m
	}
}

// RegisterClocks exports g through the default prometheus registry.
func RegisterClocks(g *crg.Guarded) error {
	return prometheus.Register(NewClockCollector(g))
}

// StartMetrics adds the metrics handler to a http.ServeMux
func StartMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
