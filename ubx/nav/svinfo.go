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

// SVInfoID is the UBX message id for NAV-SVINFO within ClassNavigation.
const SVInfoID = 0x30

const (
	channelBlockLen    = 12
	channelsOffset     = 8
	unhealthyFlagBit   = 0x10
	signalAcquiredMask = 0b100
)

// Channel is one satellite-channel block within NAV-SVINFO.
type Channel struct {
	Unhealthy      bool
	SignalAcquired bool
}

// Healthy reports whether this channel contributes a usable fix: it must
// not be flagged unhealthy, and its signal must have been acquired.
func (c Channel) Healthy() bool {
	return !c.Unhealthy && c.SignalAcquired
}

// SVInfo is the decoded NAV-SVINFO payload.
type SVInfo struct {
	Channels []Channel
}

// DecodeSVInfo parses a NAV-SVINFO payload: a channel count at offset 4,
// followed by that many 12-byte channel blocks starting at offset 8.
func DecodeSVInfo(payload []byte) SVInfo {
	count := int(payload[4])
	channels := make([]Channel, 0, count)
	for i := 0; i < count; i++ {
		base := channelsOffset + i*channelBlockLen
		flags := payload[base+2]
		quality := payload[base+3]
		channels = append(channels, Channel{
			Unhealthy:      flags&unhealthyFlagBit != 0,
			SignalAcquired: quality&signalAcquiredMask != 0,
		})
	}
	return SVInfo{Channels: channels}
}

// HealthyCount returns the number of channels with a usable fix.
func (s SVInfo) HealthyCount() int {
	n := 0
	for _, c := range s.Channels {
		if c.Healthy() {
			n++
		}
	}
	return n
}
