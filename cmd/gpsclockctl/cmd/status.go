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

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var statusAddrFlag string

func init() {
	statusCmd.Flags().StringVarP(&statusAddrFlag, "addr", "a", "localhost:80", "gpsclockd HTTP address")
	RootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "fetch and print gpsclockd's current metrics",
	RunE: func(_ *cobra.Command, _ []string) error {
		families, err := fetchMetrics(statusAddrFlag)
		if err != nil {
			return err
		}
		printStatus(families)
		return nil
	},
}

// fetchMetrics scrapes GET /metrics and parses the Prometheus text
// exposition format.
func fetchMetrics(addr string) (map[string]*dto.MetricFamily, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		return nil, fmt.Errorf("fetching metrics from %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var parser expfmt.TextParser
	return parser.TextToMetricFamilies(resp.Body)
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	default:
		return 0
	}
}

func labelString(m *dto.Metric) string {
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%s", l.GetName(), l.GetValue()))
	}
	return strings.Join(parts, ",")
}

func printStatus(families map[string]*dto.MetricFamily) {
	colorEnabled := term.IsTerminal(int(os.Stdout.Fd()))

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"metric", "labels", "value"})

	synced := true
	for _, name := range names {
		for _, m := range families[name].GetMetric() {
			val := metricValue(m)
			table.Append([]string{name, labelString(m), fmt.Sprintf("%v", val)})
			if name == "gpsclock_has_fix" && val == 0 {
				synced = false
			}
		}
	}
	table.Render()

	status := color.GreenString("synchronized")
	if !synced {
		status = color.RedString("unsynchronized")
	}
	if colorEnabled {
		fmt.Println(status)
	} else {
		if synced {
			fmt.Println("synchronized")
		} else {
			fmt.Println("unsynchronized")
		}
	}
}
