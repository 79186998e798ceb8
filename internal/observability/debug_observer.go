// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver
	indent atomic.Int32
}

// NewDebugObserver creates a debug observer with step-by-step logging and
// links it back into its StandardObserver.
func NewDebugObserver(logger logrus.FieldLogger) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, logger),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, scanID string) func(success bool, details string) {
	start := time.Now()
	depth := d.indent.Add(1) - 1

	d.logger.WithFields(logrus.Fields{
		"component": component,
		"scan_id":   scanID,
	}).Debugf("%s> %s", strings.Repeat("  ", int(depth)), step)

	return func(success bool, details string) {
		d.indent.Add(-1)
		outcome := "completed"
		if !success {
			outcome = "failed"
		}
		d.logger.WithFields(logrus.Fields{
			"component":   component,
			"scan_id":     scanID,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debugf("%s< %s %s %s", strings.Repeat("  ", int(depth)), step, outcome, details)
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	indentStr := strings.Repeat("  ", int(d.indent.Load()))
	d.logger.WithField("component", component).Debugf("%s   -> %s", indentStr, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.WithFields(logrus.Fields{
		"component": component,
		"metric":    metric,
		"value":     value,
	}).Debug("metric")
}
