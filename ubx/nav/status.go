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

// StatusID is the UBX message id for NAV-STATUS within ClassNavigation.
const StatusID = 0x03

// NavFix enumerates the receiver's fix type, as reported by NAV-STATUS.
type NavFix uint8

// NavFix values, in u-blox's wire order.
const (
	NoFix NavFix = iota
	DeadReckoning
	Fix2D
	Fix3D
	GpsDeadReckoning
	TimeOnly
	Reserved
)

// Valid reports whether the fix is good enough to trust: everything except
// NoFix and Reserved.
func (f NavFix) Valid() bool {
	switch f {
	case NoFix, Reserved:
		return false
	default:
		return true
	}
}

func (f NavFix) String() string {
	switch f {
	case NoFix:
		return "NoFix"
	case DeadReckoning:
		return "DeadReckoning"
	case Fix2D:
		return "Fix2D"
	case Fix3D:
		return "Fix3D"
	case GpsDeadReckoning:
		return "GpsDeadReckoning"
	case TimeOnly:
		return "TimeOnly"
	default:
		return "Reserved"
	}
}

// navFixFromByte maps the raw fix byte onto NavFix, folding any value past
// TimeOnly into Reserved rather than panicking on unrecognised firmware.
func navFixFromByte(b byte) NavFix {
	if b > byte(TimeOnly) {
		return Reserved
	}
	return NavFix(b)
}

// Status is the decoded NAV-STATUS payload.
type Status struct {
	Fix    NavFix
	Uptime time.Duration
}

// DecodeStatus parses a NAV-STATUS payload: fix type at offset 4, uptime in
// milliseconds at offset 12.
func DecodeStatus(payload []byte) Status {
	return Status{
		Fix:    navFixFromByte(payload[4]),
		Uptime: time.Duration(binary.LittleEndian.Uint32(payload[12:16])) * time.Millisecond,
	}
}
