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

// Package port opens the UART the GPS receiver is wired to and exposes it
// as a plain io.ReadWriter for ubx/scan and ubx/cfg to drive.
package port

import (
	"go.bug.st/serial"
)

// DefaultBaudRate is the receiver's UART speed out of the box, before any
// CFG-PRT reconfiguration.
const DefaultBaudRate = 115200

// Port wraps an open serial connection to the GPS receiver.
type Port struct {
	device string
	conn   serial.Port
}

// Open opens device at the given baud rate, 8N1, no flow control.
func Open(device string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	conn, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &Port{device: device, conn: conn}, nil
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return p.conn.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.conn.Write(b)
}

// SetBaudRate reconfigures the already-open port to a new speed, used after
// a CFG-PRT frame asks the receiver itself to switch.
func (p *Port) SetBaudRate(baud int) error {
	return p.conn.SetMode(&serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// Close closes the underlying serial connection.
func (p *Port) Close() error {
	return p.conn.Close()
}
