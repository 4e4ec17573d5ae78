/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	satCountDesc    = prometheus.NewDesc("gpsclock_sat_count", "Quantile of healthy satellites in view.", []string{"quantile"}, nil)
	accuracyDesc    = prometheus.NewDesc("gpsclock_accuracy_seconds", "Quantile of receiver-reported time accuracy.", []string{"quantile"}, nil)
	clockAdjustDesc = prometheus.NewDesc("gpsclock_clock_adjust_ms", "Quantile of applied clock discipline steps, in milliseconds.", []string{"quantile"}, nil)
	hasFixDesc      = prometheus.NewDesc("gpsclock_has_fix", "1 if the receiver currently reports a fix.", nil, nil)
	uptimeDesc      = prometheus.NewDesc("gpsclock_sensor_uptime_seconds", "Receiver-reported uptime.", nil, nil)
	receivedDesc    = prometheus.NewDesc("gpsclock_ntp_queries_received_total", "NTP queries received.", nil, nil)
	answeredDesc    = prometheus.NewDesc("gpsclock_ntp_queries_answered_total", "NTP queries answered.", nil, nil)
)

// Collector adapts a *Metrics snapshot to prometheus.Collector. Each scrape
// takes a fresh Snapshot rather than holding the Metrics mutex across
// registry plumbing.
type Collector struct {
	metrics *Metrics
}

// NewCollector wraps m for Prometheus registration.
func NewCollector(m *Metrics) *Collector {
	return &Collector{metrics: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- satCountDesc
	ch <- accuracyDesc
	ch <- clockAdjustDesc
	ch <- hasFixDesc
	ch <- uptimeDesc
	ch <- receivedDesc
	ch <- answeredDesc
}

// Collect implements prometheus.Collector, emitting one ConstMetric per
// configured quantile for each ring-backed gauge, plus the scalars.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	for q, v := range snap.SatCountQ {
		ch <- prometheus.MustNewConstMetric(satCountDesc, prometheus.GaugeValue, float64(v), quantileLabel(q))
	}
	for q, v := range snap.AccuracyQ {
		ch <- prometheus.MustNewConstMetric(accuracyDesc, prometheus.GaugeValue, v.Seconds(), quantileLabel(q))
	}
	for q, v := range snap.ClockAdjustQ {
		ch <- prometheus.MustNewConstMetric(clockAdjustDesc, prometheus.GaugeValue, float64(v), quantileLabel(q))
	}

	hasFix := 0.0
	if snap.HasFix {
		hasFix = 1.0
	}
	ch <- prometheus.MustNewConstMetric(hasFixDesc, prometheus.GaugeValue, hasFix)
	ch <- prometheus.MustNewConstMetric(uptimeDesc, prometheus.GaugeValue, snap.Uptime.Seconds())
	ch <- prometheus.MustNewConstMetric(receivedDesc, prometheus.CounterValue, float64(snap.Received))
	ch <- prometheus.MustNewConstMetric(answeredDesc, prometheus.CounterValue, float64(snap.Answered))
}

func quantileLabel(q int) string {
	return fmt.Sprintf("0.%02d", q)
}
