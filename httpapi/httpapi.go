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

// Package httpapi serves the device's small config/display page and its
// Prometheus metrics endpoint.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/coldpine/gpsclock/config"
	"github.com/coldpine/gpsclock/nvs"
)

// ConfigPage renders the HTML form body for GET / given the daemon's
// current display state. Rendering itself is an external collaborator;
// this interface is the only contract the core requires of it.
type ConfigPage interface {
	Render(state PageState) ([]byte, error)
}

// PageState is the data the rendered config page needs: the saved
// preferences plus a human-readable rendering of the current time.
type PageState struct {
	Timezone   string
	Brightness uint8
	ClockText  string
}

// Server serves the config page, its form submission handler, and the
// metrics endpoint.
type Server struct {
	Addr    string
	Page    ConfigPage
	Store   nvs.Store
	State   func() PageState
	Metrics prometheus.Collector
}

// Handler builds the mux this server listens with.
func (s *Server) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	if s.Metrics != nil {
		reg.MustRegister(s.Metrics)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe starts the server; it blocks until the listener fails or
// is closed.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.Addr, s.Handler())
}

// Serve starts the server and shuts it down when ctx is cancelled,
// mirroring the listener-goroutine shutdown style used elsewhere in this
// daemon's worker set.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	body, err := s.Page.Render(s.State())
	if err != nil {
		log.Errorf("httpapi: rendering config page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeWithETag(w, body)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	timezone := r.FormValue("timezone")
	brightnessStr := r.FormValue("brightness")
	var brightness int
	if _, err := fmt.Sscanf(brightnessStr, "%d", &brightness); err != nil {
		timezone, brightness = nvs.DefaultTimezone, int(nvs.DefaultBrightness)
	}

	if err := config.ValidateDisplay(timezone, brightness); err != nil {
		log.Warningf("httpapi: rejecting config submission: %v", err)
		timezone, brightness = nvs.DefaultTimezone, int(nvs.DefaultBrightness)
	}

	cfg := nvs.Config{Timezone: timezone, Brightness: uint8(brightness)}
	if err := s.Store.Save(cfg); err != nil {
		log.Errorf("httpapi: saving display config: %v", err)
	}

	body, err := s.Page.Render(s.State())
	if err != nil {
		log.Errorf("httpapi: rendering config page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeWithETag(w, body)
}

func writeWithETag(w http.ResponseWriter, body []byte) {
	sum := xxhash.Sum64(body)
	w.Header().Set("ETag", fmt.Sprintf(`"%x"`, sum))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
