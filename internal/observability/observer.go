// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// StandardObserver records timing and outcome of every pipeline stage
type StandardObserver struct {
	level         ObservabilityLevel
	logger        logrus.FieldLogger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, logger logrus.FieldLogger) *StandardObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// NewLogger builds the process logger. format is "json" or "text".
func NewLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", format)
	}
	return logger, nil
}

// Logger returns the underlying logger. A nil observer yields a logger that
// discards everything.
func (o *StandardObserver) Logger() logrus.FieldLogger {
	if o == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		return discard
	}
	return o.logger
}

// StartTiming returns a function to complete timing. Safe on a nil observer.
func (o *StandardObserver) StartTiming(component, operation, scanID string) func(success bool, metadata map[string]interface{}) {
	if o == nil {
		return func(bool, map[string]interface{}) {}
	}
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			ScanID:     scanID,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// Step starts a debug step when debug observation is on and returns its
// completion function; otherwise it returns a no-op.
func (o *StandardObserver) Step(component, step, scanID string) func(success bool, details string) {
	if o == nil || o.DebugObserver == nil {
		return func(bool, string) {}
	}
	return o.DebugObserver.StartStep(component, step, scanID)
}

// Detail logs a detail line in debug mode.
func (o *StandardObserver) Detail(component, detail string) {
	if o == nil || o.DebugObserver == nil {
		return
	}
	o.DebugObserver.LogDetail(component, detail)
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	fields := logrus.Fields{
		"component":   data.Component,
		"operation":   data.Operation,
		"scan_id":     data.ScanID,
		"duration_ms": data.DurationMs,
		"success":     data.Success,
	}
	if data.Error != "" {
		fields["error"] = data.Error
	}
	for k, v := range data.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch {
	case !data.Success:
		entry.Warn("operation failed")
	case o.level == ObservabilityDebug:
		entry.Info("operation completed")
	default:
		entry.Debug("operation completed")
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	ScanID     string                 `json:"scan_id"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
