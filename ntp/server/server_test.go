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

package server

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coldpine/gpsclock/ntp/protocol"
	"github.com/coldpine/gpsclock/reftime"
)

type countingStats struct {
	received int64
	answered int64
}

func (c *countingStats) IncReceivedQuery() { atomic.AddInt64(&c.received, 1) }
func (c *countingStats) IncAnsweredQuery() { atomic.AddInt64(&c.answered, 1) }

func startServer(t *testing.T, cell *reftime.Cell) (*net.UDPConn, *countingStats, func()) {
	t.Helper()
	stats := &countingStats{}
	srv := &Server{
		Config:  Config{IPs: []net.IP{net.ParseIP("127.0.0.1")}, Port: 0, Workers: 2},
		RefTime: cell,
		Stats:   stats,
	}
	// bind ourselves first to learn an ephemeral port, then hand the same
	// port to the server; simplest alternative to plumbing the listener
	// out of Serve for tests.
	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	port := probe.LocalAddr().(*net.UDPAddr).Port
	probe.Close()
	srv.Config.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)

	client, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", itoa(port)))
	require.NoError(t, err)
	return client.(*net.UDPConn), stats, cancel
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestServeAlarmWhenUnsynced(t *testing.T) {
	var cell reftime.Cell
	client, stats, cancel := startServer(t, &cell)
	defer cancel()
	defer client.Close()

	req := protocol.Message{Flags: protocol.Flags{Version: protocol.Version, Mode: protocol.ModeClient}}
	_, err := client.Write(req.Bytes())
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, protocol.MessageSize)
	n, err := client.Read(buf)
	require.NoError(t, err)
	reply, err := protocol.Parse(buf[:n])
	require.NoError(t, err)

	require.Equal(t, protocol.LeapAlarm, reply.Flags.Leap)
	require.Equal(t, protocol.ModeServer, reply.Flags.Mode)
	require.Equal(t, uint8(16), reply.Stratum)
	require.EqualValues(t, 1, atomic.LoadInt64(&stats.received))
	require.EqualValues(t, 1, atomic.LoadInt64(&stats.answered))
}

func TestServeSyncedEchoesOriginTimestamp(t *testing.T) {
	var cell reftime.Cell
	refTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cell.Set(refTime)
	client, _, cancel := startServer(t, &cell)
	defer cancel()
	defer client.Close()

	clientTx := protocol.NTP64FromTime(time.Now())
	req := protocol.Message{
		Flags:         protocol.Flags{Version: protocol.Version, Mode: protocol.ModeClient},
		TxTimestamp:   clientTx,
		OrigTimestamp: protocol.NTP64{},
	}
	_, err := client.Write(req.Bytes())
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, protocol.MessageSize)
	n, err := client.Read(buf)
	require.NoError(t, err)
	reply, err := protocol.Parse(buf[:n])
	require.NoError(t, err)

	require.Equal(t, protocol.LeapNoWarning, reply.Flags.Leap)
	require.Equal(t, uint8(1), reply.Stratum)
	require.Equal(t, clientTx, reply.OrigTimestamp)
	require.Equal(t, protocol.NTP64FromTime(refTime), reply.RefTimestamp)
	require.Equal(t, protocol.GPSRefID, reply.RefID)
}
