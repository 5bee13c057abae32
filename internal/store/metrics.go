/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

// Prometheus metrics
var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testudo_runs_total",
			Help: "Total number of runs created or moved to a terminal status",
		},
		[]string{"status"},
	)
	artifactsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testudo_artifacts_saved_total",
			Help: "Total number of artifacts upserted by type",
		},
		[]string{"type"},
	)
	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "testudo_search_duration_seconds",
			Help:    "Duration of similarity searches in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testudo_store_errors_total",
			Help: "Total number of storage operation failures by operation",
		},
		[]string{"op"},
	)
)

var tracer = otel.Tracer("testudo.ai/store")

func init() {
	prometheus.MustRegister(runsTotal, artifactsSaved, searchDuration, storeErrors)
}
