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
	"sync"
	"time"

	"github.com/eclesh/welford"
)

// Metric is a closed tag set of telemetry updates fed to Metrics.Update.
// Exactly one payload field is meaningful for a given tag; the constructor
// functions below are the only supported way to build one.
type Metric struct {
	tag metricTag

	SatelliteCount uint8
	HasFix         bool
	Accuracy       time.Duration
	SensorUptime   time.Duration
	ClockAdjustMs  int64
}

type metricTag int

const (
	tagSatelliteCount metricTag = iota
	tagHasFix
	tagAccuracy
	tagSensorUptime
	tagClockAdjust
	tagReceivedNtpQuery
	tagAnsweredNtpQuery
)

// SatelliteCountMetric reports the current healthy satellite count.
func SatelliteCountMetric(n uint8) Metric { return Metric{tag: tagSatelliteCount, SatelliteCount: n} }

// HasFixMetric reports whether the receiver currently has a fix.
func HasFixMetric(v bool) Metric { return Metric{tag: tagHasFix, HasFix: v} }

// AccuracyMetric reports the receiver's reported time accuracy.
func AccuracyMetric(d time.Duration) Metric { return Metric{tag: tagAccuracy, Accuracy: d} }

// SensorUptimeMetric reports the receiver's self-reported uptime.
func SensorUptimeMetric(d time.Duration) Metric { return Metric{tag: tagSensorUptime, SensorUptime: d} }

// ClockAdjustMetric reports a clock discipline step, in milliseconds.
func ClockAdjustMetric(ms int64) Metric { return Metric{tag: tagClockAdjust, ClockAdjustMs: ms} }

// ReceivedNtpQueryMetric reports one inbound NTP query.
func ReceivedNtpQueryMetric() Metric { return Metric{tag: tagReceivedNtpQuery} }

// AnsweredNtpQueryMetric reports one answered NTP query.
func AnsweredNtpQueryMetric() Metric { return Metric{tag: tagAnsweredNtpQuery} }

// Quantiles are the percentiles Serialize emits for each ring-backed
// metric.
var Quantiles = [...]int{10, 50, 90, 99}

// Metrics aggregates telemetry behind a single mutex. Writers are the
// scheduler's metrics-sink goroutine and the NTP server, which calls
// IncReceivedQuery/IncAnsweredQuery directly; readers are HTTP handlers.
// Every method takes the same mutex.
type Metrics struct {
	mu sync.Mutex

	satCount     *QuantileRing[uint8]
	accuracy     *QuantileRing[time.Duration]
	clockAdjust  *QuantileRing[int64]
	clockAdjustW *welford.Stats

	hasFix   bool
	uptime   time.Duration
	received uint32
	answered uint32
}

// New creates a Metrics with the default ring capacity.
func New() *Metrics {
	return &Metrics{
		satCount:     NewQuantileRing[uint8](DefaultRingCapacity),
		accuracy:     NewQuantileRing[time.Duration](DefaultRingCapacity),
		clockAdjust:  NewQuantileRing[int64](DefaultRingCapacity),
		clockAdjustW: welford.New(),
	}
}

// Update dispatches m onto the metric it tags, under the mutex.
func (s *Metrics) Update(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m.tag {
	case tagSatelliteCount:
		s.satCount.Push(m.SatelliteCount)
	case tagHasFix:
		s.hasFix = m.HasFix
	case tagAccuracy:
		s.accuracy.Push(m.Accuracy)
	case tagSensorUptime:
		s.uptime = m.SensorUptime
	case tagClockAdjust:
		s.clockAdjust.Push(m.ClockAdjustMs)
		s.clockAdjustW.Add(float64(m.ClockAdjustMs))
	case tagReceivedNtpQuery:
		s.received++
	case tagAnsweredNtpQuery:
		s.answered++
	}
}

// IncReceivedQuery implements ntp/server.Stats.
func (s *Metrics) IncReceivedQuery() { s.Update(ReceivedNtpQueryMetric()) }

// IncAnsweredQuery implements ntp/server.Stats.
func (s *Metrics) IncAnsweredQuery() { s.Update(AnsweredNtpQueryMetric()) }

// quantileLine produces one exposition line, or "" if the ring has no
// sample at that quantile yet.
func quantileLine[T any](name string, q int, v T, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s{quantile=\"0.%02d\"} %v", name, q, v)
}

// Serialize produces the plain-text, LF-separated Prometheus exposition
// format: one line per configured quantile for each ring-backed metric
// (omitting quantiles with no sample yet), followed by the scalar gauges
// has_fix, received_ntp_queries, and answered_ntp_queries, and, once at
// least one ClockAdjust sample exists, clock_adjust_mean_ms and
// clock_adjust_stddev_ms.
func (s *Metrics) Serialize() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []string
	for _, q := range Quantiles {
		if v, ok := s.satCount.Quantile(q); ok {
			lines = append(lines, quantileLine("sat_count", q, v, ok))
		}
		if v, ok := s.accuracy.Quantile(q); ok {
			lines = append(lines, quantileLine("accuracy", q, v.Nanoseconds(), ok))
		}
		if v, ok := s.clockAdjust.Quantile(q); ok {
			lines = append(lines, quantileLine("clock_adjust", q, v, ok))
		}
	}

	hasFix := 0
	if s.hasFix {
		hasFix = 1
	}
	lines = append(lines,
		fmt.Sprintf("has_fix %d", hasFix),
		fmt.Sprintf("received_ntp_queries %d", s.received),
		fmt.Sprintf("answered_ntp_queries %d", s.answered),
	)

	if s.clockAdjustW.Count() > 0 {
		lines = append(lines,
			fmt.Sprintf("clock_adjust_mean_ms %f", s.clockAdjustW.Mean()),
			fmt.Sprintf("clock_adjust_stddev_ms %f", s.clockAdjustW.Stddev()),
		)
	}

	return lines
}

// Snapshot is a point-in-time copy of the scalar and order-statistic state,
// used by Collector to build one prometheus.Collect pass without holding
// the mutex across registry plumbing.
type Snapshot struct {
	HasFix       bool
	Uptime       time.Duration
	Received     uint32
	Answered     uint32
	SatCountQ    map[int]uint8
	AccuracyQ    map[int]time.Duration
	ClockAdjustQ map[int]int64
}

// Snapshot captures the current state under the mutex.
func (s *Metrics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		HasFix:       s.hasFix,
		Uptime:       s.uptime,
		Received:     s.received,
		Answered:     s.answered,
		SatCountQ:    make(map[int]uint8),
		AccuracyQ:    make(map[int]time.Duration),
		ClockAdjustQ: make(map[int]int64),
	}
	for _, q := range Quantiles {
		if v, ok := s.satCount.Quantile(q); ok {
			snap.SatCountQ[q] = v
		}
		if v, ok := s.accuracy.Quantile(q); ok {
			snap.AccuracyQ[q] = v
		}
		if v, ok := s.clockAdjust.Quantile(q); ok {
			snap.ClockAdjustQ[q] = v
		}
	}
	return snap
}
