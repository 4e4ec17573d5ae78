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

// Package ubx implements the u-blox UBX binary protocol: frame
// serialization/deserialization, the checksum, and the class tag set.
// Message-specific payload decoding lives in the nav and cfg subpackages.
package ubx

import "fmt"

// Class is the first byte of a UBX frame identifying the message group.
type Class uint8

// Known UBX classes. Reserved3 has no known messages but is a valid wire
// value, same as the source protocol.
const (
	ClassNavigation      Class = 0x01
	ClassReceiverManager Class = 0x02
	ClassReserved3       Class = 0x03
	ClassInformation     Class = 0x04
	ClassAckNack         Class = 0x05
	ClassConfigInput     Class = 0x06
	ClassMonitoring      Class = 0x0A
	ClassAssistNowAid    Class = 0x0B
	ClassTiming          Class = 0x0D
)

// ErrUnsupportedClass is wrapped with the offending byte when a class value
// has no known mapping.
type ErrUnsupportedClass struct {
	Byte byte
}

func (e *ErrUnsupportedClass) Error() string {
	return fmt.Sprintf("ubx: unsupported class byte 0x%02x", e.Byte)
}

// ParseClass maps a wire byte to a Class.
func ParseClass(b byte) (Class, error) {
	switch Class(b) {
	case ClassNavigation, ClassReceiverManager, ClassReserved3, ClassInformation,
		ClassAckNack, ClassConfigInput, ClassMonitoring, ClassAssistNowAid, ClassTiming:
		return Class(b), nil
	default:
		return 0, &ErrUnsupportedClass{Byte: b}
	}
}

func (c Class) String() string {
	switch c {
	case ClassNavigation:
		return "Navigation"
	case ClassReceiverManager:
		return "ReceiverManager"
	case ClassReserved3:
		return "Reserved3"
	case ClassInformation:
		return "Information"
	case ClassAckNack:
		return "AckNack"
	case ClassConfigInput:
		return "ConfigInput"
	case ClassMonitoring:
		return "Monitoring"
	case ClassAssistNowAid:
		return "AssistNowAid"
	case ClassTiming:
		return "Timing"
	default:
		return fmt.Sprintf("Class(0x%02x)", uint8(c))
	}
}
