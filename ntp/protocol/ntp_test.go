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

package protocol

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlagsByte(t *testing.T) {
	f := Flags{Leap: LeapAlarm, Version: 3, Mode: ModeSymActive}
	require.Equal(t, byte(0xd9), f.Byte())
}

func TestFlagsRoundtrip(t *testing.T) {
	f := Flags{Leap: LeapAddSecond, Version: 3, Mode: ModeClient}
	require.Equal(t, f, ParseFlags(f.Byte()))
}

func TestFix1616Zero(t *testing.T) {
	f := Fix1616{I: 0, F: 0}
	require.Equal(t, [4]byte{0, 0, 0, 0}, f.Bytes())
}

func TestFix1616BigEndianOrdering(t *testing.T) {
	require.Equal(t, [4]byte{0, 1, 0, 0}, Fix1616{I: 1}.Bytes())
	require.Equal(t, [4]byte{1, 0, 0, 0}, Fix1616{I: 256}.Bytes())
	require.Equal(t, [4]byte{0, 0, 0, 1}, Fix1616{F: 1}.Bytes())
	require.Equal(t, [4]byte{0, 0, 1, 0}, Fix1616{F: 256}.Bytes())
}

func TestRefIDGPS(t *testing.T) {
	require.Equal(t, [4]byte{'G', 'P', 'S', 0}, GPSRefID)
}

func TestNTP64ZeroAtEpoch(t *testing.T) {
	got := NTP64FromTime(ntpEpoch)
	require.Equal(t, NTP64{}, got)
	require.Equal(t, [8]byte{0, 0, 0, 0, 0, 0, 0, 0}, got.Bytes())
}

func TestPeerPrecisionFromDuration(t *testing.T) {
	require.Equal(t, PeerPrecision(-30), PeerPrecisionFromDuration(time.Nanosecond))
	require.Equal(t, PeerPrecision(-20), PeerPrecisionFromDuration(time.Microsecond))
	require.Equal(t, PeerPrecision(-10), PeerPrecisionFromDuration(time.Millisecond))
	require.Equal(t, PeerPrecision(0), PeerPrecisionFromDuration(time.Second))
	require.Equal(t, PeerPrecision(1), PeerPrecisionFromDuration(2*time.Second))
}

func TestPeerPrecisionFromFloat32(t *testing.T) {
	require.Equal(t, PeerPrecision(-11), PeerPrecisionFromFloat32(1.0/1025.0))
	require.Equal(t, PeerPrecision(-10), PeerPrecisionFromFloat32(1.0/1024.0))
	require.Equal(t, PeerPrecision(-10), PeerPrecisionFromFloat32(1.0/513.0))
	require.Equal(t, PeerPrecision(-9), PeerPrecisionFromFloat32(1.0/512.0))
	require.Equal(t, PeerPrecision(-9), PeerPrecisionFromFloat32(1.0/511.0))
	require.Equal(t, PeerPrecision(0), PeerPrecisionFromFloat32(1.0))
}

func TestFix1616FromDuration(t *testing.T) {
	got := Fix1616FromDuration(1526 * time.Microsecond)
	require.Equal(t, uint16(0), got.I)
	require.InDelta(t, 100, int(got.F), 1)
}

// TestSerializeSyncedReply reproduces scenario S5: a synced server reply
// with RefTime = 2004-09-27T03:16:10Z, echoed client timestamp
// C5 02 04 7A 00 00 00 00, flags byte 0x1A (leap=0, version=3,
// mode=2/SymPassive), stratum 1, ref_id "GPS\0".
func TestSerializeSyncedReply(t *testing.T) {
	ts := time.Date(2004, time.September, 27, 3, 16, 10, 0, time.UTC)
	clientTx := NTP64FromTime(ts)
	m := Message{
		Flags:          Flags{Leap: LeapNoWarning, Version: Version, Mode: ModeSymPassive},
		Stratum:        1,
		PollInterval:   10,
		Precision:      PeerPrecisionFromDuration(15 * time.Microsecond),
		RootDelay:      Fix1616{},
		RootDispersion: Fix1616FromDuration(320 * time.Microsecond),
		RefID:          GPSRefID,
		RefTimestamp:   NTP64FromTime(ts),
		OrigTimestamp:  clientTx,
		RxTimestamp:    NTP64FromTime(ts),
		TxTimestamp:    NTP64FromTime(ts),
	}
	got := m.Bytes()
	require.Len(t, got, MessageSize)
	require.Equal(t, byte(0x1a), got[0])
	require.Equal(t, []byte{'G', 'P', 'S', 0}, got[12:16])
	wantTS := []byte{0xc5, 0x02, 0x04, 0x7a, 0, 0, 0, 0}
	require.Equal(t, wantTS, got[16:24]) // ref
	require.Equal(t, wantTS, got[24:32]) // origin, echoed from client
	require.Equal(t, wantTS, got[32:40]) // receive
	require.Equal(t, wantTS, got[40:48]) // transmit
}

// TestSerializeAlarmReply reproduces scenario S4: with no reference time
// set, the server answers with LeapAlarm, ModeServer, and stratum 16. The
// packed flags byte is 0xdc, which is what
// ((leap&3)<<6)|((version&7)<<3)|(mode&7) computes for leap=Alarm(3),
// version=3, mode=Server(4).
func TestSerializeAlarmReply(t *testing.T) {
	f := Flags{Leap: LeapAlarm, Version: Version, Mode: ModeServer}
	require.Equal(t, byte(0xdc), f.Byte())

	m := Message{
		Flags:   f,
		Stratum: 16,
		RefID:   GPSRefID,
	}
	got := m.Bytes()
	require.Equal(t, byte(0xdc), got[0])
	require.Equal(t, byte(16), got[1])
}

func TestParseRoundtrip(t *testing.T) {
	ts := time.Now().UTC()
	m := Message{
		Flags:          Flags{Leap: LeapNoWarning, Version: Version, Mode: ModeServer},
		Stratum:        1,
		PollInterval:   4,
		Precision:      PeerPrecisionFromDuration(time.Microsecond),
		RootDelay:      Fix1616{I: 1, F: 2},
		RootDispersion: Fix1616{I: 3, F: 4},
		RefID:          GPSRefID,
		RefTimestamp:   NTP64FromTime(ts),
		OrigTimestamp:  NTP64FromTime(ts),
		RxTimestamp:    NTP64FromTime(ts),
		TxTimestamp:    NTP64FromTime(ts),
	}
	buf := m.Bytes()
	got, err := Parse(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestParseRejectsBadLength(t *testing.T) {
	_, err := Parse(make([]byte, MessageSize-1))
	require.ErrorIs(t, err, ErrBadLength)
}

func TestReadMessage(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer conn.Close()

	cconn, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	defer cconn.Close()

	want := Message{Flags: Flags{Leap: LeapNoWarning, Version: Version, Mode: ModeClient}, Stratum: 0}
	_, err = cconn.Write(want.Bytes())
	require.NoError(t, err)

	got, _, err := ReadMessage(conn)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
