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

/*
Package clock contains a wrapper around the CLOCK_ADJTIME syscall used to
discipline CLOCK_REALTIME against GPS time.

Supported operations:
 - calling CLOCK_ADJTIME through Adjtime, to read or set clock parameters.
 - stepping the clock through Step, which shifts CLOCK_REALTIME forwards
   or backwards by a given offset rather than overwriting it outright.
 - marking the clock TIME_OK through SetSync after a step lands.

IO (in clockio.go) wraps these into the narrow Now/Set interface the rest
of the daemon depends on, so a poller can be tested against a fake clock
without touching CLOCK_REALTIME.
*/
package clock
