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

// Package reftime holds the single piece of state the NTP responder and
// the GPS poller share: the most recent disciplined time reading.
package reftime

import (
	"sync"
	"time"
)

// Cell is a mutex-guarded optional time.Time. It starts empty (no fix has
// ever been accepted) and moves monotonically from empty to set to set: a
// poll that fails accuracy or validity gating never clears a Cell that was
// already set, it simply leaves the last known-good reading in place.
type Cell struct {
	mu  sync.Mutex
	at  time.Time
	set bool
}

// Get returns the current reading and whether one has ever been set.
// Callers must copy the value out and release before doing any I/O; never
// call this while holding a lock across a network send.
func (c *Cell) Get() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at, c.set
}

// Set records a new reading. Once set, a Cell is never reset to empty.
func (c *Cell) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = t
	c.set = true
}
