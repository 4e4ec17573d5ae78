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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSerializeEmptyOmitsQuantileLines(t *testing.T) {
	m := New()
	lines := m.Serialize()
	require.Contains(t, lines, "has_fix 0")
	require.Contains(t, lines, "received_ntp_queries 0")
	require.Contains(t, lines, "answered_ntp_queries 0")
	for _, l := range lines {
		require.NotContains(t, l, "sat_count")
	}
}

func TestSerializeQuantileLines(t *testing.T) {
	m := New()
	for _, v := range []uint8{3, 4, 5, 6, 7} {
		m.Update(SatelliteCountMetric(v))
	}
	lines := m.Serialize()
	require.Contains(t, lines, `sat_count{quantile="0.50"} 5`)
}

func TestSerializeScalars(t *testing.T) {
	m := New()
	m.Update(HasFixMetric(true))
	m.IncReceivedQuery()
	m.IncReceivedQuery()
	m.IncAnsweredQuery()
	lines := m.Serialize()
	require.Contains(t, lines, "has_fix 1")
	require.Contains(t, lines, "received_ntp_queries 2")
	require.Contains(t, lines, "answered_ntp_queries 1")
}

func TestClockAdjustMedianAndMean(t *testing.T) {
	m := New()
	for _, v := range []int64{10, 20, 30} {
		m.Update(ClockAdjustMetric(v))
	}
	snap := m.Snapshot()
	require.Equal(t, int64(20), snap.ClockAdjustQ[50])

	lines := m.Serialize()
	found := false
	for _, l := range lines {
		if l == "clock_adjust_mean_ms 20.000000" {
			found = true
		}
	}
	require.True(t, found)
}

func TestSnapshotCapturesAccuracyAndUptime(t *testing.T) {
	m := New()
	m.Update(AccuracyMetric(50 * time.Millisecond))
	m.Update(SensorUptimeMetric(3 * time.Hour))
	snap := m.Snapshot()
	require.Equal(t, 3*time.Hour, snap.Uptime)
	require.Equal(t, 50*time.Millisecond, snap.AccuracyQ[50])
}
