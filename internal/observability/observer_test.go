// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json", "info", "json", false},
		{"text default", "debug", "", false},
		{"bad level", "loud", "text", true},
		{"bad format", "info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStartTiming_LogsOperation(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", "json", &buf)
	require.NoError(t, err)

	obs := NewStandardObserver(ObservabilityMetrics, logger)
	finish := obs.StartTiming("detector", "classify", "scan-1")
	finish(true, map[string]interface{}{"kept_count": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "detector", entry["component"])
	assert.Equal(t, "classify", entry["operation"])
	assert.Equal(t, "scan-1", entry["scan_id"])
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, float64(2), entry["kept_count"])
	assert.Equal(t, "debug", entry["level"])
}

func TestLogOperation_FailureWarns(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	obs := NewStandardObserver(ObservabilityMetrics, logger)
	obs.StartTiming("explainer", "explain", "")(false, nil)
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

func TestLogOperation_Off(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger("debug", "text", &buf)
	NewStandardObserver(ObservabilityOff, logger).StartTiming("a", "b", "")(false, nil)
	assert.Empty(t, buf.String())
}

func TestNilObserverIsSafe(t *testing.T) {
	var obs *StandardObserver
	assert.NotPanics(t, func() {
		obs.StartTiming("a", "b", "c")(true, nil)
		obs.Step("a", "b", "c")(true, "")
		obs.Detail("a", "b")
		obs.Logger().Info("discarded")
	})
}

func TestDebugObserver_Steps(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	obs := NewDebugObserver(logger).StandardObserver
	require.NotNil(t, obs.DebugObserver)

	done := obs.Step("scanner", "merge", "scan-1")
	obs.Detail("scanner", "3 entities")
	done(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "> merge")
	assert.Contains(t, out, "-> 3 entities")
	assert.Contains(t, out, "< merge completed ok")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}
