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

package ubx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// timeGPSFrame is the frame used throughout spec scenarios S1/S3: a
// NAV-TIMEGPS frame whose accuracy field is 0x0131332C ns (about 20ms).
var timeGPSFrame = []byte{
	0xb5, 0x62, 0x01, 0x20, 0x10, 0x00, 0xce, 0x74, 0x3e, 0x04, 0x88, 0xcc, 0xfa, 0xff,
	0x81, 0x07, 0x11, 0x07, 0x2c, 0x33, 0x31, 0x01, 0x33, 0x25,
}

func TestChecksum(t *testing.T) {
	// S1
	ckA, ckB := Checksum(timeGPSFrame[2:22])
	require.Equal(t, byte(0x33), ckA)
	require.Equal(t, byte(0x25), ckB)
}

func TestRoundtrip(t *testing.T) {
	f, err := Deserialize(timeGPSFrame)
	require.NoError(t, err)
	require.Equal(t, ClassNavigation, f.Class)
	require.Equal(t, uint8(0x20), f.ID)
	require.Equal(t, timeGPSFrame, f.Serialize())
}

func TestDeserializeBadMagic(t *testing.T) {
	buf := append([]byte{}, timeGPSFrame...)
	buf[0] = 0xAA
	_, err := Deserialize(buf)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDeserializeBadChecksum(t *testing.T) {
	buf := append([]byte{}, timeGPSFrame...)
	buf[len(buf)-1] ^= 0xFF
	_, err := Deserialize(buf)
	require.ErrorIs(t, err, ErrBadChecksum)
}

func TestDeserializeUnsupportedClass(t *testing.T) {
	buf := append([]byte{}, timeGPSFrame...)
	buf[2] = 0x09 // not a known class
	ckA, ckB := Checksum(buf[2:22])
	buf[22], buf[23] = ckA, ckB
	_, err := Deserialize(buf)
	var unsupported *ErrUnsupportedClass
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, byte(0x09), unsupported.Byte)
}

func TestDeserializeIncompleteRead(t *testing.T) {
	_, err := Deserialize(timeGPSFrame[:len(timeGPSFrame)-4])
	require.ErrorIs(t, err, ErrIncompleteRead)
}
