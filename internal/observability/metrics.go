// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package observability assembles the Prometheus registry for EcoTech
// processes and exports it for the node exporter textfile collector.
package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// commandRuns counts CLI command executions by command and result.
var commandRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecotech_command_runs_total",
		Help: "Total number of ecotech command executions by command and result",
	},
	[]string{"command", "result"},
)

// RecordCommand increments the command counter. A nil err records success.
func RecordCommand(command string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	commandRuns.WithLabelValues(command, result).Inc()
}

// NewRegistry creates a registry holding the runtime collectors, the auth
// metrics and the command counter. A fresh registry avoids polluting the
// global one.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(commandRuns)
	auth.RegisterMetrics(registry)
	return registry
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if strings.TrimSpace(path) == "" {
		return oops.Code("METRICS_EXPORT_FAILED").Errorf("textfile path is required")
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.Code("METRICS_EXPORT_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
