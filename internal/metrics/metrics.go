// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus collectors reported by scans.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "policy_guard"

// ScanMetrics is the set of collectors updated once per scan. A nil
// *ScanMetrics records nothing.
type ScanMetrics struct {
	scans               *prometheus.CounterVec
	entities            *prometheus.CounterVec
	explanationFailures *prometheus.CounterVec
	duration            prometheus.Histogram
}

// NewScanMetrics registers the scan collectors with reg. A nil registerer
// yields nil metrics.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return nil
	}

	return &ScanMetrics{
		scans: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Number of completed scans by verdict",
		}, []string{"verdict"}),
		entities: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_total",
			Help:      "Number of flagged entity values by category",
		}, []string{"category"}),
		explanationFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explanation_failures_total",
			Help:      "Number of explanation lookups that fell back to the placeholder",
		}, []string{"category"}),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of a scan including explanation lookups",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
	}
}

// ObserveScan records one finished scan.
func (m *ScanMetrics) ObserveScan(verdict string, took time.Duration) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(verdict).Inc()
	m.duration.Observe(took.Seconds())
}

// AddEntities counts n flagged values of category.
func (m *ScanMetrics) AddEntities(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entities.WithLabelValues(category).Add(float64(n))
}

// ExplanationFailed counts one placeholder explanation for category.
func (m *ScanMetrics) ExplanationFailed(category string) {
	if m == nil {
		return
	}
	m.explanationFailures.WithLabelValues(category).Inc()
}
