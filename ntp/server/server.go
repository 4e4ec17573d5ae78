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

// Package server implements the stateless NTPv3 query/response engine: a
// worker pool of goroutines answers queries from the current reference
// time, never blocking on the shared clock state for longer than a single
// read.
package server

import (
	"context"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/coldpine/gpsclock/ntp/protocol"
	"github.com/coldpine/gpsclock/reftime"
)

// Stats receives the two counters this server contributes to the metrics
// surface. Implemented by *metrics.Metrics in production.
type Stats interface {
	IncReceivedQuery()
	IncAnsweredQuery()
}

// Config configures the server.
type Config struct {
	IPs         []net.IP
	Port        int
	Workers     int
	ExtraOffset time.Duration
}

// Server answers NTPv3 queries using the current contents of a
// reftime.Cell.
type Server struct {
	Config  Config
	RefTime *reftime.Cell
	Stats   Stats

	tasks chan task
}

type task struct {
	conn     *net.UDPConn
	addr     net.Addr
	received time.Time
	request  protocol.Message
}

// Serve starts the worker pool and one listener goroutine per configured
// IP, and blocks until ctx is cancelled or a listener fails.
func (s *Server) Serve(ctx context.Context) error {
	s.tasks = make(chan task, s.Config.Workers)
	for i := 0; i < s.Config.Workers; i++ {
		go s.worker()
	}

	errs := make(chan error, len(s.Config.IPs))
	conns := make([]*net.UDPConn, 0, len(s.Config.IPs))
	for _, ip := range s.Config.IPs {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: s.Config.Port})
		if err != nil {
			return err
		}
		conns = append(conns, conn)
		go s.listen(conn, errs)
	}

	select {
	case <-ctx.Done():
		for _, c := range conns {
			c.Close()
		}
		return ctx.Err()
	case err := <-errs:
		for _, c := range conns {
			c.Close()
		}
		return err
	}
}

func (s *Server) listen(conn *net.UDPConn, errs chan<- error) {
	for {
		received := time.Now()
		m, addr, err := protocol.ReadMessage(conn)
		if err != nil {
			if isClosed(err) {
				return
			}
			log.Debugf("ntp: failed to read datagram: %v", err)
			continue
		}
		s.Stats.IncReceivedQuery()
		s.tasks <- task{conn: conn, addr: addr, received: received, request: m}
	}
}

func isClosed(err error) bool {
	ne, ok := err.(*net.OpError)
	return ok && ne.Err.Error() == "use of closed network connection"
}

func (s *Server) worker() {
	for t := range s.tasks {
		s.serve(t)
	}
}

func (s *Server) serve(t task) {
	extra := s.Config.ExtraOffset
	now := time.Now().Add(extra)
	received := t.received.Add(extra)

	refTime, hasRef := s.RefTime.Get()

	reply := protocol.Message{
		Flags: protocol.Flags{
			Leap:    protocol.LeapNoWarning,
			Version: protocol.Version,
			Mode:    protocol.ModeServer,
		},
		Stratum:        16,
		PollInterval:   t.request.PollInterval,
		Precision:      protocol.PeerPrecisionFromDuration(time.Microsecond),
		RootDelay:      protocol.Fix1616{},
		RootDispersion: protocol.Fix1616{},
		RefID:          protocol.GPSRefID,
		OrigTimestamp:  t.request.TxTimestamp,
		RxTimestamp:    protocol.NTP64FromTime(received),
		TxTimestamp:    protocol.NTP64FromTime(now),
	}
	if hasRef {
		reply.Stratum = 1
		reply.RefTimestamp = protocol.NTP64FromTime(refTime)
	} else {
		reply.Flags.Leap = protocol.LeapAlarm
	}

	if _, err := t.conn.WriteTo(reply.Bytes(), t.addr); err != nil {
		log.Debugf("ntp: failed to write reply to %s: %v", t.addr, err)
		return
	}
	s.Stats.IncAnsweredQuery()
}
