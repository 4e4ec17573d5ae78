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

package nav

import (
	"encoding/binary"
	"time"
)

// TimeGPSID is the UBX message id for NAV-TIMEGPS within ClassNavigation.
const TimeGPSID = 0x20

// gpsEpoch is 1980-01-06T00:00:00Z, the GPS time origin.
var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// maxAccuracy is the accuracy gate: values coarser than this are not
// trusted enough to discipline the clock.
const maxAccuracy = 100 * time.Millisecond

// TimeGPS is the decoded NAV-TIMEGPS payload.
type TimeGPS struct {
	Milli      uint32
	Nanos      int32 // [-500_000, 500_000]
	Week       int16
	LeapSec    int8
	ValidFlags Valid
	Accuracy   time.Duration
}

// DecodeTimeGPS parses a 16-byte NAV-TIMEGPS payload at the fixed
// little-endian offsets u-blox documents.
func DecodeTimeGPS(payload []byte) TimeGPS {
	return TimeGPS{
		Milli:      binary.LittleEndian.Uint32(payload[0:4]),
		Nanos:      int32(binary.LittleEndian.Uint32(payload[4:8])),
		Week:       int16(binary.LittleEndian.Uint16(payload[8:10])),
		LeapSec:    int8(payload[10]),
		ValidFlags: ValidFromByte(payload[11]),
		Accuracy:   time.Duration(binary.LittleEndian.Uint32(payload[12:16])),
	}
}

// UTC converts a TimeGPS reading to a UTC instant, gated by accuracy and
// validity. It returns ok=false ("no-UTC") when accuracy exceeds 100ms or
// any of the three validity flags is clear — callers must not touch the
// system clock in that case.
func (t TimeGPS) UTC() (utc time.Time, ok bool) {
	if t.Accuracy > maxAccuracy {
		return time.Time{}, false
	}
	if !t.ValidFlags.TimeOfWeek || !t.ValidFlags.WeekNumber || !t.ValidFlags.LeapSecond {
		return time.Time{}, false
	}
	d := gpsEpoch.
		Add(time.Duration(t.Week) * 7 * 24 * time.Hour).
		Add(time.Duration(t.Milli) * time.Millisecond).
		Add(time.Duration(t.Nanos) * time.Nanosecond)
	// GPS time runs ahead of UTC by the accumulated leap seconds; subtract,
	// never add.
	return d.Add(-time.Duration(t.LeapSec) * time.Second), true
}
