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

package scan

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coldpine/gpsclock/ubx"
)

var timeGPSFrame = []byte{
	0xb5, 0x62, 0x01, 0x20, 0x10, 0x00, 0xce, 0x74, 0x3e, 0x04, 0x88, 0xcc, 0xfa, 0xff,
	0x81, 0x07, 0x11, 0x07, 0x2c, 0x33, 0x31, 0x01, 0x33, 0x25,
}

func readAll(t *testing.T, s *Scanner) []ubx.Frame {
	t.Helper()
	var out []ubx.Frame
	for {
		f, err := s.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, f)
	}
}

func TestScannerTwoFramesBackToBack(t *testing.T) {
	buf := append(append([]byte{}, timeGPSFrame...), timeGPSFrame...)
	s := New(bytes.NewReader(buf))
	frames := readAll(t, s)
	require.Len(t, frames, 2)
}

func TestScannerLeadingAndInterstitialGarbage(t *testing.T) {
	// S3: garbage ++ frame1 ++ garbage ++ frame2
	buf := []byte{0xaa, 0xaa, 0xbb}
	buf = append(buf, timeGPSFrame...)
	buf = append(buf, 0xff)
	buf = append(buf, timeGPSFrame...)
	s := New(bytes.NewReader(buf))
	frames := readAll(t, s)
	require.Len(t, frames, 2)
	for _, f := range frames {
		require.Equal(t, ubx.ClassNavigation, f.Class)
		require.Equal(t, uint8(0x20), f.ID)
	}
}

func TestScannerTruncatedTail(t *testing.T) {
	buf := append(append([]byte{}, timeGPSFrame...), timeGPSFrame[:len(timeGPSFrame)-4]...)
	s := New(bytes.NewReader(buf))
	frames := readAll(t, s)
	require.Len(t, frames, 1)
}

func TestScannerOnlyGarbageYieldsNothing(t *testing.T) {
	buf := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	s := New(bytes.NewReader(buf))
	frames := readAll(t, s)
	require.Empty(t, frames)
}
