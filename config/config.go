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

// Package config holds the daemon's static configuration: serial device,
// NTP bind addresses, HTTP bind address, and the display defaults that seed
// non-volatile storage on first boot.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultServerIPs mirrors the NTP responder's loopback-plus-any default,
// narrowed to IPv4 since the receiver has no IPv6 uplink.
var DefaultServerIPs = MultiIPs{net.IPv4zero}

// MultiIPs lets a single flag be repeated to build up a bind list.
type MultiIPs []net.IP

// Set implements flag.Value.
func (m *MultiIPs) Set(ipaddr string) error {
	ip := net.ParseIP(ipaddr)
	if ip == nil {
		return fmt.Errorf("invalid ip address %q", ipaddr)
	}
	*m = append(*m, ip)
	return nil
}

// String implements flag.Value.
func (m *MultiIPs) String() string {
	ips := make([]string, 0, len(*m))
	for _, ip := range *m {
		ips = append(ips, ip.String())
	}
	return strings.Join(ips, ", ")
}

// DaemonConfig is the complete set of knobs the daemon needs to start.
// It can be loaded from YAML and then overridden by flags.
type DaemonConfig struct {
	// Serial is the UART device the GPS receiver is attached to.
	Serial string `yaml:"serial"`
	// BaudRate is the UART baud rate.
	BaudRate int `yaml:"baud_rate"`

	// NTPIPs is the set of addresses the NTP server binds.
	NTPIPs MultiIPs `yaml:"-"`
	// NTPPort is the UDP port the NTP server listens on.
	NTPPort int `yaml:"ntp_port"`
	// NTPWorkers is the size of the reply worker pool.
	NTPWorkers int `yaml:"ntp_workers"`
	// ExtraOffset is added to the receive and transmit timestamps of every
	// NTP reply, for testing clock skew without touching the system clock.
	ExtraOffset time.Duration `yaml:"extra_offset"`

	// HTTPAddr is the address the config/metrics HTTP server binds.
	HTTPAddr string `yaml:"http_addr"`

	// RingCapacity is loaded from YAML but not passed on: metrics.New
	// always sizes its rings with metrics.DefaultRingCapacity.
	RingCapacity int `yaml:"ring_capacity"`

	// Timezone is the IANA zone name the clock face renders in. It does
	// not affect the system clock, which always runs in UTC.
	Timezone string `yaml:"timezone"`
	// Brightness is the LED matrix brightness, 0..15.
	Brightness int `yaml:"brightness"`

	// LogLevel is a logrus level name: debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns a DaemonConfig populated with the values the firmware
// ships with out of the box.
func Default() DaemonConfig {
	return DaemonConfig{
		Serial:       "/dev/ttyS1",
		BaudRate:     115200,
		NTPIPs:       DefaultServerIPs,
		NTPPort:      123,
		NTPWorkers:   4,
		HTTPAddr:     ":80",
		RingCapacity: 30,
		Timezone:     "UTC",
		Brightness:   2,
		LogLevel:     "info",
	}
}

// Load reads and parses a YAML config file, starting from Default and
// overlaying whatever the file sets.
func Load(path string) (DaemonConfig, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks field invariants not expressible in the type system.
func (c *DaemonConfig) Validate() error {
	if c.NTPWorkers < 1 {
		return fmt.Errorf("ntp_workers must be at least 1")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if c.Brightness < 0 || c.Brightness > 15 {
		return fmt.Errorf("brightness must be within 0..15, got %d", c.Brightness)
	}
	return nil
}

// ValidateDisplay checks just the two fields the HTTP config form submits,
// used to reject a POST / before it touches non-volatile storage.
func ValidateDisplay(timezone string, brightness int) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", timezone, err)
	}
	if brightness < 0 || brightness > 15 {
		return fmt.Errorf("brightness must be within 0..15, got %d", brightness)
	}
	return nil
}
