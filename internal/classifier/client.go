// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package classifier calls a token-classification sidecar over HTTP and turns
// its entities into detector spans.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"policy-guard/internal/detector"
	"policy-guard/internal/observability"
	"policy-guard/internal/resilience"
)

// OffsetUnits says how the sidecar counts the start/end offsets it reports.
type OffsetUnits string

const (
	// RuneOffsets are Unicode code point indexes, as Python string indexes are.
	RuneOffsets OffsetUnits = "rune"
	// ByteOffsets are UTF-8 byte indexes.
	ByteOffsets OffsetUnits = "byte"
)

const serviceName = "classifier"

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL     string // e.g. "http://ner-sidecar:8001"
	Timeout     time.Duration
	OffsetUnits OffsetUnits
	Policy      resilience.Policy
	HTTPClient  *http.Client // overrides Timeout when set
}

// Client calls the sidecar's /classify endpoint. It is safe for concurrent
// use.
type Client struct {
	url      string
	units    OffsetUnits
	policy   resilience.Policy
	http     *http.Client
	observer *observability.StandardObserver
}

// New creates a Client from opts.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	units := opts.OffsetUnits
	if units == "" {
		units = RuneOffsets
	}
	return &Client{
		url:    strings.TrimRight(opts.BaseURL, "/") + "/classify",
		units:  units,
		policy: opts.Policy,
		http:   httpClient,
	}
}

// SetObserver attaches an observer for request timing.
func (c *Client) SetObserver(observer *observability.StandardObserver) {
	c.observer = observer
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Entities []entity `json:"entities"`
}

// entity mirrors an aggregated token-classification result. Entity is the
// label key used when the sidecar does not aggregate.
type entity struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Score       float64 `json:"score"`
}

// Classify sends text to the sidecar and returns its spans with byte offsets
// into text. Any failure is reported as *detector.DetectorUnavailableError.
func (c *Client) Classify(ctx context.Context, text string) ([]detector.RawSpan, error) {
	finish := c.observer.StartTiming(serviceName, "classify", "")

	var result classifyResponse
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = c.call(ctx, text)
		return callErr
	})
	if err != nil {
		finish(false, map[string]interface{}{
			"error":        err.Error(),
			"circuit_open": resilience.IsCircuitBreakerError(err),
		})
		return nil, &detector.DetectorUnavailableError{Detector: serviceName, Err: err}
	}

	spans := c.toSpans(text, result.Entities)
	finish(true, map[string]interface{}{"entities": len(spans)})
	return spans, nil
}

func (c *Client) call(ctx context.Context, text string) (classifyResponse, error) {
	var result classifyResponse

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return result, resilience.NewPermanentError(fmt.Sprintf("classifier: marshal: %v", err), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return result, resilience.NewPermanentError(fmt.Sprintf("classifier: request: %v", err), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return result, fmt.Errorf("classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return result, &resilience.StatusError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, resilience.NewPermanentError(fmt.Sprintf("classifier: decode: %v", err), err)
	}
	return result, nil
}

func (c *Client) toSpans(text string, entities []entity) []detector.RawSpan {
	if len(entities) == 0 {
		return nil
	}

	var offsets []int
	if c.units == RuneOffsets {
		offsets = runeOffsets(text)
	}

	spans := make([]detector.RawSpan, 0, len(entities))
	for _, e := range entities {
		label := e.EntityGroup
		if label == "" {
			label = e.Entity
		}
		start, end := e.Start, e.End
		if offsets != nil {
			start = byteOffset(offsets, start, len(text))
			end = byteOffset(offsets, end, len(text))
		}
		spans = append(spans, detector.RawSpan{
			Category:   detector.Category(label),
			Text:       e.Word,
			Start:      start,
			End:        end,
			Confidence: e.Score,
		})
	}
	return spans
}

// runeOffsets maps each code point index (and the end of text) to its byte
// offset.
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

// byteOffset converts a code point index. Indexes outside the text map to
// positions the span checks reject rather than being clamped.
func byteOffset(offsets []int, idx, textLen int) int {
	switch {
	case idx < 0:
		return idx
	case idx >= len(offsets):
		return textLen + (idx - len(offsets)) + 1
	default:
		return offsets[idx]
	}
}
