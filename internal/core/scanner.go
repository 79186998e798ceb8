// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"policy-guard/internal/detector"
	"policy-guard/internal/explain"
	"policy-guard/internal/grouper"
	"policy-guard/internal/merger"
	"policy-guard/internal/metrics"
	"policy-guard/internal/observability"
	"policy-guard/internal/resilience"
)

// Verdict is the outcome of a scan.
type Verdict string

const (
	VerdictAllow Verdict = "ALLOW"
	VerdictBlock Verdict = "BLOCK"
	VerdictError Verdict = "ERROR"
)

// ExplanationPlaceholder replaces the explanation of a group whose lookup failed.
const ExplanationPlaceholder = "explanation unavailable"

// DefaultExplainConcurrency bounds parallel explanation lookups per scan.
const DefaultExplainConcurrency = 4

// ScanResult holds the results of a scanning operation.
type ScanResult struct {
	Verdict    Verdict                `json:"verdict" yaml:"verdict"`
	Flagged    []detector.EntityGroup `json:"flagged" yaml:"flagged"`
	Error      string                 `json:"error,omitempty" yaml:"error,omitempty"`
	ScanID     string                 `json:"scan_id" yaml:"scan_id"`
	DurationMs int64                  `json:"duration_ms" yaml:"duration_ms"`
}

// SpanDetector produces the raw spans for one text.
type SpanDetector interface {
	Detect(ctx context.Context, scanID, text string) ([]detector.RawSpan, error)
}

// Options wires a Scanner's collaborators. Detector is required; a nil
// Explainer leaves explanations empty.
type Options struct {
	Detector           SpanDetector
	Merger             *merger.Merger
	Explainer          detector.Explainer
	ExplainConcurrency int
	Observer           *observability.StandardObserver
	Metrics            *metrics.ScanMetrics
	Breakers           []*resilience.CircuitBreaker // reported by CollaboratorStats
}

// Scanner runs the detect, merge, group and explain pipeline. It keeps no
// per-scan state and is safe for concurrent use.
type Scanner struct {
	detector    SpanDetector
	merger      *merger.Merger
	explainer   detector.Explainer
	concurrency int
	observer    *observability.StandardObserver
	metrics     *metrics.ScanMetrics
	breakers    []*resilience.CircuitBreaker
}

// NewScanner builds a Scanner from opts.
func NewScanner(opts Options) (*Scanner, error) {
	if opts.Detector == nil {
		return nil, fmt.Errorf("scanner requires a detector")
	}
	m := opts.Merger
	if m == nil {
		m = merger.New(merger.DefaultOptions())
	}
	concurrency := opts.ExplainConcurrency
	if concurrency <= 0 {
		concurrency = DefaultExplainConcurrency
	}
	return &Scanner{
		detector:    opts.Detector,
		merger:      m,
		explainer:   opts.Explainer,
		concurrency: concurrency,
		observer:    opts.Observer,
		metrics:     opts.Metrics,
		breakers:    opts.Breakers,
	}, nil
}

// CollaboratorStats returns the circuit breaker state of each remote
// collaborator the scanner calls.
func (s *Scanner) CollaboratorStats() []resilience.CircuitBreakerStats {
	stats := make([]resilience.CircuitBreakerStats, 0, len(s.breakers))
	for _, b := range s.breakers {
		if b != nil {
			stats = append(stats, b.GetStats())
		}
	}
	return stats
}

// Scan runs the pipeline over text. Detection, merging and grouping failures
// yield an ERROR verdict with no flagged groups; explanation failures only
// replace the affected group's explanation.
func (s *Scanner) Scan(ctx context.Context, text string) ScanResult {
	start := time.Now()
	scanID := uuid.NewString()
	finish := s.observer.StartTiming("scanner", "scan", scanID)

	result := s.scan(ctx, scanID, text)
	result.ScanID = scanID
	took := time.Since(start)
	result.DurationMs = took.Milliseconds()

	s.metrics.ObserveScan(string(result.Verdict), took)
	finish(result.Verdict != VerdictError, map[string]interface{}{
		"verdict": string(result.Verdict),
		"groups":  len(result.Flagged),
	})
	return result
}

func (s *Scanner) scan(ctx context.Context, scanID, text string) ScanResult {
	groups, err := s.detectGroups(ctx, scanID, text)
	if err != nil {
		s.observer.Logger().WithField("scan_id", scanID).WithError(err).Warn("scan failed")
		return ScanResult{Verdict: VerdictError, Flagged: []detector.EntityGroup{}, Error: err.Error()}
	}
	if len(groups) == 0 {
		return ScanResult{Verdict: VerdictAllow, Flagged: []detector.EntityGroup{}}
	}

	for _, g := range groups {
		s.metrics.AddEntities(string(g.Category), len(g.Values))
	}
	s.explainGroups(ctx, scanID, groups)
	return ScanResult{Verdict: VerdictBlock, Flagged: groups}
}

// detectGroups runs the structural stages. A panic in any of them is reported
// as an error so one bad input cannot take down a long-lived process.
func (s *Scanner) detectGroups(ctx context.Context, scanID, text string) (groups []detector.EntityGroup, err error) {
	defer func() {
		if r := recover(); r != nil {
			groups = nil
			err = fmt.Errorf("internal error during scan: %v", r)
		}
	}()

	spans, err := s.detector.Detect(ctx, scanID, text)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	done := s.observer.Step("scanner", "merge", scanID)
	entities, err := s.merger.Merge(spans, text)
	if err != nil {
		done(false, err.Error())
		return nil, fmt.Errorf("merging failed: %w", err)
	}
	done(true, fmt.Sprintf("%d spans -> %d entities", len(spans), len(entities)))

	groups, err = grouper.Group(entities, text)
	if err != nil {
		return nil, fmt.Errorf("grouping failed: %w", err)
	}
	s.observer.Detail("scanner", fmt.Sprintf("categories: %v", grouper.Categories(groups)))
	return groups, nil
}

// explainGroups fills in each group's explanation in place. Lookups run
// concurrently; each writes only its own slot.
func (s *Scanner) explainGroups(ctx context.Context, scanID string, groups []detector.EntityGroup) {
	if s.explainer == nil {
		return
	}

	failures := make([]error, len(groups))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range groups {
		g.Go(func() error {
			explanation, err := s.lookup(ctx, groups[i])
			if err != nil {
				failures[i] = err
				groups[i].Explanation = ExplanationPlaceholder
				s.metrics.ExplanationFailed(string(groups[i].Category))
				return nil
			}
			groups[i].Explanation = explanation
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for _, err := range failures {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		s.observer.Logger().WithField("scan_id", scanID).
			WithField("failed", merr.Len()).
			WithError(err).Warn("explanation lookups failed")
	}
}

func (s *Scanner) lookup(ctx context.Context, group detector.EntityGroup) (explanation string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &detector.ExplanationUnavailableError{Category: group.Category, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	explanation, err = s.explainer.Explain(ctx, explain.Question(group.Category, group.Values))
	if err != nil {
		return "", &detector.ExplanationUnavailableError{Category: group.Category, Err: err}
	}
	return explanation, nil
}
