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

// TimeUTCID is the UBX message id for NAV-TIMEUTC within ClassNavigation.
const TimeUTCID = 0x21

// TimeUTC is the decoded NAV-TIMEUTC payload: a calendar timestamp the
// receiver has already converted from GPS time, rather than the raw
// week/ToW pair NAV-TIMEGPS carries.
type TimeUTC struct {
	WeeksMilli uint32
	Accuracy   uint32
	Nanos      int32
	Year       uint16
	Month      uint8
	Day        uint8
	Hour       uint8
	Min        uint8
	Sec        uint8
	Valid      Valid
}

// DecodeTimeUTC parses a 20-byte NAV-TIMEUTC payload.
func DecodeTimeUTC(payload []byte) TimeUTC {
	return TimeUTC{
		WeeksMilli: binary.LittleEndian.Uint32(payload[0:4]),
		Accuracy:   binary.LittleEndian.Uint32(payload[4:8]),
		Nanos:      int32(binary.LittleEndian.Uint32(payload[8:12])),
		Year:       binary.LittleEndian.Uint16(payload[12:14]),
		Month:      payload[14],
		Day:        payload[15],
		Hour:       payload[16],
		Min:        payload[17],
		Sec:        payload[18],
		Valid:      ValidFromByte(payload[19]),
	}
}

// UTC assembles the calendar fields into a time.Time, applying the
// sub-second nanosecond correction the receiver reports separately.
func (t TimeUTC) UTC() time.Time {
	d := time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Min), int(t.Sec), 0, time.UTC)
	return d.Add(time.Duration(t.Nanos) * time.Nanosecond)
}
