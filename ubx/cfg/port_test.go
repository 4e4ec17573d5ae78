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

package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coldpine/gpsclock/ubx"
)

func TestPortSerialize(t *testing.T) {
	p := Port{Baudrate: 9600, LSB: true, ProtoIn: ProtoUBX, ProtoOut: ProtoUBX}
	want := []byte{
		0x01, 0x00, 0x00, 0x00, 0xD0, 0x08, 0x00, 0x00, 0x80, 0x25, 0x00, 0x00, 0x01, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	require.Equal(t, want, p.Serialize())
}

func TestDisableNMEAFrame(t *testing.T) {
	f := DisableNMEA(9600)
	require.Equal(t, ubx.ClassConfigInput, f.Class)
	require.Equal(t, uint8(PortID), f.ID)
	require.Len(t, f.Payload, 20)
}
