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

// Package scheduler wires the poller, feed, metrics-sink, NTP responder,
// and HTTP workers into one cancellation scope.
package scheduler

import (
	"context"
	"io"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/coldpine/gpsclock/clock"
	"github.com/coldpine/gpsclock/httpapi"
	"github.com/coldpine/gpsclock/metrics"
	"github.com/coldpine/gpsclock/ntp/server"
	"github.com/coldpine/gpsclock/reftime"
	"github.com/coldpine/gpsclock/ubx"
	"github.com/coldpine/gpsclock/ubx/cfg"
	"github.com/coldpine/gpsclock/ubx/nav"
	"github.com/coldpine/gpsclock/ubx/scan"
)

// Poll intervals, per the firmware's stimulation schedule.
const (
	timeGPSInterval = time.Second
	statusInterval  = time.Second
	svInfoInterval  = 3 * time.Second
)

// metricChanCapacity bounds the metrics channel; a full channel means the
// sink has fallen behind, and the feed worker drops rather than blocks.
const metricChanCapacity = 64

// Scheduler owns every long-running worker this daemon runs.
type Scheduler struct {
	Port       io.ReadWriter
	BaudRate   uint32
	ClockIO    clock.IO
	RefTime    *reftime.Cell
	Metrics    *metrics.Metrics
	NTPServer  *server.Server
	HTTPServer *httpapi.Server

	dropped uint64
}

// Run launches all five workers under one errgroup and blocks until ctx is
// cancelled or one of them fails.
func (s *Scheduler) Run(ctx context.Context) error {
	metricCh := make(chan metrics.Metric, metricChanCapacity)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.poller(ctx) })
	eg.Go(func() error { return s.feed(ctx, metricCh) })
	eg.Go(func() error { s.metricsSink(ctx, metricCh); return nil })
	eg.Go(func() error { return s.NTPServer.Serve(ctx) })
	eg.Go(func() error { return s.HTTPServer.Serve(ctx) })

	if supported, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warningf("scheduler: systemd notify failed: %v", err)
	} else if !supported {
		log.Debug("scheduler: systemd notify not supported, skipping")
	}

	return eg.Wait()
}

// poller writes the port-config frame once, then periodically stimulates
// the receiver for NAV-TIMEGPS, NAV-STATUS, and NAV-SVINFO.
func (s *Scheduler) poller(ctx context.Context) error {
	port := cfg.Port{Baudrate: s.BaudRate, LSB: true, ProtoIn: cfg.ProtoUBX, ProtoOut: cfg.ProtoUBX}
	if _, err := s.Port.Write(port.Frame().Serialize()); err != nil {
		return err
	}

	timeGPS := time.NewTicker(timeGPSInterval)
	defer timeGPS.Stop()
	status := time.NewTicker(statusInterval)
	defer status.Stop()
	svInfo := time.NewTicker(svInfoInterval)
	defer svInfo.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeGPS.C:
			s.request(nav.TimeGPSID)
		case <-status.C:
			s.request(nav.StatusID)
		case <-svInfo.C:
			s.request(nav.SVInfoID)
		}
	}
}

func (s *Scheduler) request(id uint8) {
	if _, err := s.Port.Write(cfg.RequestRate(id).Serialize()); err != nil {
		log.Debugf("scheduler: poll request for id 0x%02x failed: %v", id, err)
	}
}

// feed owns the frame scanner: it decodes every frame, disciplines the
// clock on valid NAV-TIMEGPS, and forwards Metric values without ever
// blocking on the sink.
func (s *Scheduler) feed(ctx context.Context, metricCh chan<- metrics.Metric) error {
	sc := scan.New(s.Port)
	first := true

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f, err := sc.Next()
		if err != nil {
			return err
		}

		if f.Class != ubx.ClassNavigation {
			continue
		}

		switch f.ID {
		case nav.TimeGPSID:
			s.handleTimeGPS(f.Payload, metricCh, &first)
		case nav.StatusID:
			st := nav.DecodeStatus(f.Payload)
			s.sendMetric(metricCh, metrics.HasFixMetric(st.Fix.Valid()))
			s.sendMetric(metricCh, metrics.SensorUptimeMetric(st.Uptime))
		case nav.SVInfoID:
			sv := nav.DecodeSVInfo(f.Payload)
			s.sendMetric(metricCh, metrics.SatelliteCountMetric(uint8(sv.HealthyCount())))
		}
	}
}

func (s *Scheduler) handleTimeGPS(payload []byte, metricCh chan<- metrics.Metric, first *bool) {
	t := nav.DecodeTimeGPS(payload)
	s.sendMetric(metricCh, metrics.AccuracyMetric(t.Accuracy))

	newTime, ok := t.UTC()
	if !ok {
		return
	}

	current, err := s.ClockIO.Now()
	if err == nil && !*first {
		adjMs := newTime.Sub(current).Milliseconds()
		s.sendMetric(metricCh, metrics.ClockAdjustMetric(adjMs))
	}

	s.RefTime.Set(newTime)

	if err := s.ClockIO.Set(newTime); err != nil {
		log.Warningf("scheduler: stepping system clock failed: %v", err)
	}
	*first = false
}

// sendMetric never blocks the real-time feed path: a full channel means
// the sink has fallen behind, and the sample is dropped and counted rather
// than stalling clock discipline.
func (s *Scheduler) sendMetric(ch chan<- metrics.Metric, m metrics.Metric) {
	select {
	case ch <- m:
	default:
		s.dropped++
		log.Debugf("scheduler: metrics channel full, dropped sample (total dropped: %d)", s.dropped)
	}
}

func (s *Scheduler) metricsSink(ctx context.Context, ch <-chan metrics.Metric) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-ch:
			s.Metrics.Update(m)
		}
	}
}
