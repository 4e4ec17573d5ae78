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

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	syscall "golang.org/x/sys/unix"

	"github.com/coldpine/gpsclock/clock"
	"github.com/coldpine/gpsclock/config"
	"github.com/coldpine/gpsclock/httpapi"
	"github.com/coldpine/gpsclock/metrics"
	"github.com/coldpine/gpsclock/ntp/server"
	"github.com/coldpine/gpsclock/nvs"
	"github.com/coldpine/gpsclock/reftime"
	"github.com/coldpine/gpsclock/scheduler"
	"github.com/coldpine/gpsclock/ubx/port"
)

type textConfigPage struct{}

func (textConfigPage) Render(state httpapi.PageState) ([]byte, error) {
	return []byte(fmt.Sprintf(
		"gpsclock: %s\ntimezone: %s\nbrightness: %d\n",
		state.ClockText, state.Timezone, state.Brightness,
	)), nil
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file; flags below override it")
	logLevel := flag.String("loglevel", "info", "Set a log level. Can be: debug, info, warning, error")
	serialDevice := flag.String("serial", "", "UART device the GPS receiver is attached to")
	baudRate := flag.Int("baud", 0, "UART baud rate")
	ntpPort := flag.Int("ntp-port", 0, "UDP port the NTP server listens on")
	ntpWorkers := flag.Int("ntp-workers", 0, "size of the NTP reply worker pool")
	httpAddr := flag.String("http-addr", "", "address the HTTP config/metrics server binds")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	if *serialDevice != "" {
		cfg.Serial = *serialDevice
	}
	if *baudRate != 0 {
		cfg.BaudRate = *baudRate
	}
	if *ntpPort != 0 {
		cfg.NTPPort = *ntpPort
	}
	if *ntpWorkers != 0 {
		cfg.NTPWorkers = *ntpWorkers
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	switch *logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("unrecognized log level: %v", *logLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config is invalid: %v", err)
	}

	gpsPort, err := port.Open(cfg.Serial, cfg.BaudRate)
	if err != nil {
		log.Fatalf("opening GPS serial port %s: %v", cfg.Serial, err)
	}
	defer gpsPort.Close()

	refTime := &reftime.Cell{}
	m := metrics.New()
	store := nvs.NewMemory()
	if err := store.Save(nvs.Config{Timezone: cfg.Timezone, Brightness: uint8(cfg.Brightness)}); err != nil {
		log.Warningf("nvs: seeding display defaults failed: %v", err)
	}

	ntpSrv := &server.Server{
		Config: server.Config{
			IPs:         cfg.NTPIPs,
			Port:        cfg.NTPPort,
			Workers:     cfg.NTPWorkers,
			ExtraOffset: cfg.ExtraOffset,
		},
		RefTime: refTime,
		Stats:   m,
	}
	if len(ntpSrv.Config.IPs) == 0 {
		ntpSrv.Config.IPs = []net.IP{net.IPv4zero}
	}

	httpSrv := &httpapi.Server{
		Addr:  cfg.HTTPAddr,
		Page:  textConfigPage{},
		Store: store,
		State: func() httpapi.PageState {
			display, err := store.Load()
			if err != nil {
				log.Warningf("nvs: load failed, using defaults: %v", err)
				display = nvs.Default()
			}
			return httpapi.PageState{
				Timezone:   display.Timezone,
				Brightness: display.Brightness,
				ClockText:  time.Now().UTC().Format(time.RFC3339),
			}
		},
		Metrics: metrics.NewCollector(m),
	}

	sched := &scheduler.Scheduler{
		Port:       gpsPort,
		BaudRate:   uint32(cfg.BaudRate),
		ClockIO:    clock.SystemIO{},
		RefTime:    refTime,
		Metrics:    m,
		NTPServer:  ntpSrv,
		HTTPServer: httpSrv,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warning("shutting down")
		cancel()
	}()

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("scheduler exited: %v", err)
	}
}
