// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crg

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	spllLockPolls = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eam2011",
		Subsystem: "crg",
		Name:      "spll_lock_polls",
		Help:      "Status register polls until the SPLL reported lock",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
	spllLockTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eam2011",
		Subsystem: "crg",
		Name:      "spll_lock_timeouts_total",
		Help:      "SPLL reconfigurations that ran out of lock polls",
	})
	reconfigureDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eam2011",
		Subsystem: "crg",
		Name:      "reconfigure_duration_seconds",
		Help:      "Wall time spent in oscillator and PLL reconfiguration",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 10, 7),
	}, []string{"sequence"})
)

func init() {
	prometheus.MustRegister(spllLockPolls)
	prometheus.MustRegister(spllLockTimeouts)
	prometheus.MustRegister(reconfigureDuration)
}
