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
	"fmt"
	"net"
)

// MessageSize is the exact wire size of an NTPv3 message.
const MessageSize = 48

// ErrBadLength is returned by Parse when the datagram isn't exactly
// MessageSize bytes.
var ErrBadLength = fmt.Errorf("ntp: message must be exactly %d bytes", MessageSize)

// GPSRefID is the reference identifier this server always reports: "GPS"
// padded with a trailing NUL, never an IPv4-address fallback.
var GPSRefID = [4]byte{'G', 'P', 'S', 0}

/*
Message is an NTPv3 message.

http://seriot.ch/ntp.php
https://tools.ietf.org/html/rfc958

   0                   1                   2                   3
   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
0 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |LI | VN  |Mode |    Stratum     |     Poll      |  Precision   |
4 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Delay                            |
8 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Dispersion                       |
12+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                          Reference ID                         |
16+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  +                     Reference Timestamp (64)                  +
24+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  +                      Origin Timestamp (64)                    +
32+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  +                      Receive Timestamp (64)                   +
40+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  +                      Transmit Timestamp (64)                  +
48+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
type Message struct {
	Flags          Flags
	Stratum        uint8
	PollInterval   uint8
	Precision      PeerPrecision
	RootDelay      Fix1616
	RootDispersion Fix1616
	RefID          [4]byte
	RefTimestamp   NTP64
	OrigTimestamp  NTP64
	RxTimestamp    NTP64
	TxTimestamp    NTP64
}

// Bytes serializes the message to its 48-byte wire form.
func (m Message) Bytes() []byte {
	out := make([]byte, 0, MessageSize)
	out = append(out, m.Flags.Byte(), m.Stratum, m.PollInterval, byte(m.Precision))
	rd := m.RootDelay.Bytes()
	out = append(out, rd[:]...)
	rdisp := m.RootDispersion.Bytes()
	out = append(out, rdisp[:]...)
	out = append(out, m.RefID[:]...)
	for _, ts := range [...]NTP64{m.RefTimestamp, m.OrigTimestamp, m.RxTimestamp, m.TxTimestamp} {
		b := ts.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// Parse decodes a 48-byte NTPv3 message. It returns ErrBadLength for
// anything else.
func Parse(buf []byte) (Message, error) {
	if len(buf) != MessageSize {
		return Message{}, ErrBadLength
	}
	var m Message
	m.Flags = ParseFlags(buf[0])
	m.Stratum = buf[1]
	m.PollInterval = buf[2]
	m.Precision = PeerPrecision(buf[3])
	m.RootDelay = ParseFix1616(buf[4:8])
	m.RootDispersion = ParseFix1616(buf[8:12])
	copy(m.RefID[:], buf[12:16])
	m.RefTimestamp = ParseNTP64(buf[16:24])
	m.OrigTimestamp = ParseNTP64(buf[24:32])
	m.RxTimestamp = ParseNTP64(buf[32:40])
	m.TxTimestamp = ParseNTP64(buf[40:48])
	return m, nil
}

// ReadMessage reads one NTPv3 datagram off conn.
func ReadMessage(conn *net.UDPConn) (Message, net.Addr, error) {
	buf := make([]byte, MessageSize)
	n, remAddr, err := conn.ReadFromUDP(buf)
	if err != nil {
		return Message{}, nil, err
	}
	m, err := Parse(buf[:n])
	return m, remAddr, err
}
