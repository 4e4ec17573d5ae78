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

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// IO reads and disciplines a system clock. It exists so the scheduler's
// poller can be exercised against a fake in tests without touching the
// real CLOCK_REALTIME.
type IO interface {
	Now() (time.Time, error)
	Set(time.Time) error
}

// SystemIO implements IO against CLOCK_REALTIME via direct syscalls,
// marking the clock TIME_OK after every successful step.
type SystemIO struct{}

// Now reads CLOCK_REALTIME.
func (SystemIO) Now() (time.Time, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts.Sec, ts.Nsec), nil
}

// Set steps CLOCK_REALTIME by the delta between t and the clock's current
// reading, then marks the clock synchronized.
func (s SystemIO) Set(t time.Time) error {
	now, err := s.Now()
	if err != nil {
		return err
	}
	if _, err := Step(unix.CLOCK_REALTIME, t.Sub(now)); err != nil {
		return err
	}
	return SetSync()
}
