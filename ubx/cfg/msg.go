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

import "github.com/coldpine/gpsclock/ubx"

// rateOncePerReport is the fixed CFG rate-enable payload: three
// little-endian u16 values, 1000 (0x03e8, a 1000ms period, i.e. 1 Hz)
// followed by 1 and 1. The same six bytes are sent for every id.
var rateOncePerReport = []byte{0xe8, 0x03, 0x01, 0x00, 0x01, 0x00}

// RequestRate builds a ConfigInput frame enabling periodic output of the
// message with the given id. It addresses the target message directly by
// its own id under ClassConfigInput rather than going through the generic
// CFG-MSG (class 0x06, id 0x01) envelope: the class/id the message is
// reported under never actually travels in the payload, only this fixed
// six-byte enable pattern does.
func RequestRate(id uint8) ubx.Frame {
	payload := make([]byte, len(rateOncePerReport))
	copy(payload, rateOncePerReport)
	return ubx.Frame{Class: ubx.ClassConfigInput, ID: id, Payload: payload}
}
