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

/*
Package protocol implements the NTPv3 wire format this server speaks: a
48-byte message, fixed-point root delay/dispersion, and 64-bit timestamps
whose fractional half deliberately carries raw nanoseconds rather than the
RFC's frac/2^32 encoding. Preserved for bit-compatibility with the firmware
this server replaces.
*/
package protocol

import (
	"math/bits"
	"time"
)

// Version is the NTP version number this server always reports.
const Version = 3

// ntpEpoch is 1900-01-01T00:00:00Z, the NTP time origin.
var ntpEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// LeapIndicator is the two-bit leap-second warning field.
type LeapIndicator uint8

// LeapIndicator values.
const (
	LeapNoWarning LeapIndicator = iota
	LeapAddSecond
	LeapDelSecond
	LeapAlarm
)

// Mode is the three-bit NTP association mode field.
type Mode uint8

// Mode values, in RFC order.
const (
	ModeUnspecified Mode = iota
	ModeSymActive
	ModeSymPassive
	ModeClient
	ModeServer
	ModeBroadcast
	ModeControlMessage
	ModeReserved
)

// Flags is the first byte of an NTP message: leap indicator, version
// number, and association mode.
type Flags struct {
	Leap    LeapIndicator
	Version uint8
	Mode    Mode
}

// Byte packs the flags into a single byte: leap in bits 7-6, version in
// bits 5-3, mode in bits 2-0.
func (f Flags) Byte() byte {
	return byte((uint8(f.Leap)&0x3)<<6) | byte((f.Version&0x7)<<3) | byte(uint8(f.Mode)&0x7)
}

// ParseFlags unpacks a flags byte.
func ParseFlags(b byte) Flags {
	return Flags{
		Leap:    LeapIndicator((b >> 6) & 0x3),
		Version: (b >> 3) & 0x7,
		Mode:    Mode(b & 0x7),
	}
}

// Fix1616 is a 16.16 fixed-point value, as used for root delay and root
// dispersion: a 16-bit integer part and a 16-bit fractional part.
type Fix1616 struct {
	I uint16
	F uint16
}

// Fix1616FromDuration converts a duration to 16.16 fixed point: the
// fractional part counts 2^16ths of a second, roughly 15.2us per unit.
func Fix1616FromDuration(d time.Duration) Fix1616 {
	secs := d / time.Second
	rem := d % time.Second
	frac := uint64(rem) * 65536 / uint64(time.Second)
	return Fix1616{I: uint16(secs), F: uint16(frac)}
}

// Bytes serializes the value big-endian: I then F, 4 bytes total.
func (f Fix1616) Bytes() [4]byte {
	return [4]byte{byte(f.I >> 8), byte(f.I), byte(f.F >> 8), byte(f.F)}
}

// ParseFix1616 reads a big-endian 16.16 value.
func ParseFix1616(b []byte) Fix1616 {
	return Fix1616{
		I: uint16(b[0])<<8 | uint16(b[1]),
		F: uint16(b[2])<<8 | uint16(b[3]),
	}
}

// NTP64 is a 64-bit NTP timestamp: seconds since the NTP epoch in the
// upper 32 bits, and — deliberately not RFC-conformant — raw nanoseconds
// (not frac/2^32) in the lower 32 bits.
type NTP64 struct {
	Sec  uint32
	Frac uint32
}

// NTP64FromTime converts a UTC instant to an NTP64 timestamp.
func NTP64FromTime(t time.Time) NTP64 {
	d := t.Sub(ntpEpoch)
	sec := d / time.Second
	nanos := d % time.Second
	return NTP64{Sec: uint32(sec), Frac: uint32(nanos)}
}

// Time converts an NTP64 timestamp back to a UTC instant.
func (n NTP64) Time() time.Time {
	return ntpEpoch.Add(time.Duration(n.Sec) * time.Second).Add(time.Duration(n.Frac))
}

// Bytes serializes the value big-endian: Sec then Frac, 8 bytes total.
func (n NTP64) Bytes() [8]byte {
	var out [8]byte
	out[0] = byte(n.Sec >> 24)
	out[1] = byte(n.Sec >> 16)
	out[2] = byte(n.Sec >> 8)
	out[3] = byte(n.Sec)
	out[4] = byte(n.Frac >> 24)
	out[5] = byte(n.Frac >> 16)
	out[6] = byte(n.Frac >> 8)
	out[7] = byte(n.Frac)
	return out
}

// ParseNTP64 reads a big-endian NTP64 timestamp.
func ParseNTP64(b []byte) NTP64 {
	return NTP64{
		Sec:  uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		Frac: uint32(b[4])<<24 | uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
	}
}

// PeerPrecision is the clock precision field: a power of two, expressed in
// seconds, as a signed exponent.
type PeerPrecision int8

// PeerPrecisionFromDuration rounds d up to the nearest power of two and
// reports its base-2 exponent. Durations under a second are expressed as a
// negative exponent relative to one nanosecond.
func PeerPrecisionFromDuration(d time.Duration) PeerPrecision {
	if d >= time.Second {
		secs := uint64(d / time.Second)
		return PeerPrecision(bits.Len64(nextPow2(secs)) - 1)
	}
	nanos := uint64(d % time.Second)
	if nanos == 0 {
		nanos = 1
	}
	return PeerPrecision(bits.Len64(nextPow2(nanos)) - 1 - 30)
}

// PeerPrecisionFromFloat32 mirrors the firmware's alternate constructor,
// used when precision is known as a fractional-second float rather than a
// duration.
func PeerPrecisionFromFloat32(f float32) PeerPrecision {
	for i := -30; i <= 2; i++ {
		p := float32(pow2(i))
		if p > f {
			return PeerPrecision(i - 1)
		}
	}
	return 127
}

func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

func pow2(exp int) float64 {
	if exp >= 0 {
		return float64(uint64(1) << uint(exp))
	}
	v := 1.0
	for i := 0; i < -exp; i++ {
		v /= 2
	}
	return v
}
