// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-guard/internal/core"
	"policy-guard/internal/detector"
	"policy-guard/internal/metrics"
	"policy-guard/internal/resilience"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubScanner struct {
	got    []string
	result core.ScanResult
}

func (s *stubScanner) Scan(_ context.Context, text string) core.ScanResult {
	s.got = append(s.got, text)
	return s.result
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(scanner Scanner, opts Options) *Server {
	opts.Scanner = scanner
	opts.Logger = quietLogger()
	return NewServer(opts)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleScan(t *testing.T) {
	scanner := &stubScanner{result: core.ScanResult{
		Verdict: core.VerdictBlock,
		Flagged: []detector.EntityGroup{{Category: "EMAIL", Values: []string{"bob@example.com"}, Explanation: "Clause 2"}},
		ScanID:  "abc",
	}}
	srv := newTestServer(scanner, Options{})

	rec := do(t, srv.Handler(), http.MethodPost, "/scan", `{"text":"mail bob@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"mail bob@example.com"}, scanner.got)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BLOCK", body["verdict"])
	flagged := body["flagged"].([]interface{})
	require.Len(t, flagged, 1)
	group := flagged[0].(map[string]interface{})
	assert.Equal(t, "EMAIL", group["entity_group"])
	assert.Equal(t, []interface{}{"bob@example.com"}, group["words"])
	assert.Equal(t, "Clause 2", group["explanation"])
}

func TestHandleScan_ErrorVerdictIsOK(t *testing.T) {
	scanner := &stubScanner{result: core.ScanResult{Verdict: core.VerdictError, Error: "detection failed: detector classifier unavailable"}}
	srv := newTestServer(scanner, Options{})

	rec := do(t, srv.Handler(), http.MethodPost, "/scan", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verdict":"ERROR","flagged":[],"error":"detection failed: detector classifier unavailable","scan_id":"","duration_ms":0}`, rec.Body.String())
}

func TestHandleScan_EmptyTextIsScanned(t *testing.T) {
	scanner := &stubScanner{result: core.ScanResult{Verdict: core.VerdictAllow}}
	srv := newTestServer(scanner, Options{})

	rec := do(t, srv.Handler(), http.MethodPost, "/scan", `{"text":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{""}, scanner.got)
}

func TestHandleScan_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"missing text", `{}`, http.StatusBadRequest},
		{"wrong type", `{"text":42}`, http.StatusBadRequest},
		{"too large", `{"text":"` + strings.Repeat("a", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}

	scanner := &stubScanner{}
	srv := newTestServer(scanner, Options{MaxBodyBytes: 1024})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/scan", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Empty(t, scanner.got)
}

func TestHandleExport(t *testing.T) {
	scanner := &stubScanner{result: core.ScanResult{
		Verdict: core.VerdictBlock,
		Flagged: []detector.EntityGroup{{Category: "PHONE", Values: []string{"555-123-4567"}}},
		ScanID:  "scan-1",
	}}
	srv := newTestServer(scanner, Options{})

	rec := do(t, srv.Handler(), http.MethodPost, "/export?format=yaml", `{"text":"call 555-123-4567"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "policy-guard-scan-1.yaml")
	assert.Contains(t, rec.Body.String(), "entity_group: PHONE")

	rec = do(t, srv.Handler(), http.MethodPost, "/export?format=pdf", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealthAndFormats(t *testing.T) {
	srv := newTestServer(&stubScanner{}, Options{})

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = do(t, srv.Handler(), http.MethodGet, "/formats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"json"`)
}

func TestHandleHealth_ReportsOpenBreaker(t *testing.T) {
	stats := []resilience.CircuitBreakerStats{
		{Name: "classifier", State: resilience.StateClosed.String()},
		{Name: "explainer", State: resilience.StateOpen.String(), FailureCount: 5},
	}
	srv := newTestServer(&stubScanner{}, Options{
		Collaborators: func() []resilience.CircuitBreakerStats { return stats },
	})

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status        string                           `json:"status"`
		Collaborators []resilience.CircuitBreakerStats `json:"collaborators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	require.Len(t, body.Collaborators, 2)
	assert.Equal(t, "explainer", body.Collaborators[1].Name)
	assert.Equal(t, 5, body.Collaborators[1].FailureCount)

	stats[1].State = resilience.StateClosed.String()
	rec = do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewScanMetrics(reg).ObserveScan("ALLOW", 0)

	srv := newTestServer(&stubScanner{}, Options{Gatherer: reg})
	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `policy_guard_scans_total{verdict="ALLOW"} 1`)

	srv = newTestServer(&stubScanner{}, Options{})
	rec = do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(&stubScanner{result: core.ScanResult{Verdict: core.VerdictAllow}}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/scan", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
