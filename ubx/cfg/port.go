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

// Package cfg builds outbound UBX ConfigInput frames: CFG-PRT to set the
// UART's speed and protocol masks, and the fixed rate-enable frame
// (RequestRate) the poller sends for each NAV message id.
package cfg

import (
	"encoding/binary"

	"github.com/coldpine/gpsclock/ubx"
)

// PortID is the UBX CFG-PRT message id.
const PortID = 0x00

// Proto is a UBX port protocol mask value.
type Proto uint16

// Proto values, in u-blox's wire order.
const (
	ProtoNone Proto = 0
	ProtoUBX  Proto = 1
	ProtoNMEA Proto = 2
	ProtoBoth Proto = 3
)

// mode8N1 is the fixed UART line-coding byte pair this receiver is wired
// for: 8 data bits, no parity, 1 stop bit.
var mode8N1 = [2]byte{0xD0, 0x08}

// Port describes the desired UART configuration for CFG-PRT.
type Port struct {
	Baudrate uint32
	LSB      bool
	ProtoIn  Proto
	ProtoOut Proto
}

// Serialize encodes the CFG-PRT payload: UART port mode (4 bytes: always 1,
// UART), the 8N1 line-coding pair, the LSB-first flag as a u16 (0 means
// LSB-first, 1 means MSB-first), the baud rate, the two protocol masks, and
// four reserved zero bytes.
func (p Port) Serialize() []byte {
	out := make([]byte, 20)
	binary.LittleEndian.PutUint32(out[0:4], 1) // 1 = UART, 4 = SPI
	copy(out[4:6], mode8N1[:])
	lsbFlag := uint16(1)
	if p.LSB {
		lsbFlag = 0
	}
	binary.LittleEndian.PutUint16(out[6:8], lsbFlag)
	binary.LittleEndian.PutUint32(out[8:12], p.Baudrate)
	binary.LittleEndian.PutUint16(out[12:14], uint16(p.ProtoIn))
	binary.LittleEndian.PutUint16(out[14:16], uint16(p.ProtoOut))
	// out[16:20] stays zero: reserved.
	return out
}

// Frame builds the full UBX ConfigInput frame requesting this port
// configuration.
func (p Port) Frame() ubx.Frame {
	return ubx.Frame{Class: ubx.ClassConfigInput, ID: PortID, Payload: p.Serialize()}
}

// DisableNMEA builds a CFG-PRT frame that restricts the UART to UBX-only
// framing in both directions, LSB-first, at the given baud rate.
func DisableNMEA(baudrate uint32) ubx.Frame {
	return Port{Baudrate: baudrate, LSB: true, ProtoIn: ProtoUBX, ProtoOut: ProtoUBX}.Frame()
}
