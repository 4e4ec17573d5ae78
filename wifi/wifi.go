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

// Package wifi defines the association contract a board's network driver
// must satisfy. Association and DHCP are board-specific external
// collaborators; a failure here is fatal at boot, since nothing in this
// daemon can serve NTP or HTTP without an address.
package wifi

import "context"

// Associator connects to an access point and blocks until an address has
// been acquired, or ctx is cancelled. A non-nil error is fatal to the
// process.
type Associator interface {
	Connect(ctx context.Context, ssid, pass string) error
}

// Noop never associates with anything; useful for hosts that already have
// network connectivity managed externally, such as this module's own test
// environment.
type Noop struct{}

// Connect implements Associator by doing nothing.
func (Noop) Connect(ctx context.Context, ssid, pass string) error {
	return nil
}
