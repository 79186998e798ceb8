// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package merger consolidates fragmented raw spans into category-pure
// entities.
//
// Spans are swept left to right by start offset. A span extends the current
// run only when it has the same category and starts exactly where the run
// ends; anything else closes the run. Entity text is always re-sliced from
// the source, never joined from fragment texts, because subword tokenizers
// mangle spacing and casing in the fragments they report.
package merger

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"policy-guard/internal/detector"
)

// Mode selects the adjacency rule.
type Mode string

const (
	// ModeStrict merges only exactly adjacent same-category spans.
	ModeStrict Mode = "strict"
	// ModeWhitespaceGap also merges across a short, whitespace-only gap.
	ModeWhitespaceGap Mode = "whitespace_gap"
)

// DefaultMaxGap is the widest gap, in bytes, bridged in whitespace-gap mode.
const DefaultMaxGap = 1

// Options configures a Merger.
type Options struct {
	Mode   Mode
	MaxGap int // only used in ModeWhitespaceGap
}

// DefaultOptions returns the strict configuration.
func DefaultOptions() Options {
	return Options{Mode: ModeStrict, MaxGap: DefaultMaxGap}
}

// ParseMode validates a mode name. The empty string means strict.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeWhitespaceGap:
		return ModeWhitespaceGap, nil
	default:
		return "", fmt.Errorf("unknown merge mode %q (expected %s or %s)", name, ModeStrict, ModeWhitespaceGap)
	}
}

// Merger is stateless and safe for concurrent use.
type Merger struct {
	opts Options
}

// New creates a Merger.
func New(opts Options) *Merger {
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if opts.MaxGap <= 0 {
		opts.MaxGap = DefaultMaxGap
	}
	return &Merger{opts: opts}
}

// Merge consolidates spans over source. Every span is checked before any
// merging happens; the first invalid one aborts with a
// *detector.InvalidSpanError. Ties on start keep input order. A span covering
// exactly the same range and category as the current run (the classifier and
// a pattern hitting one occurrence) is absorbed into it.
func (m *Merger) Merge(spans []detector.RawSpan, source string) ([]detector.MergedEntity, error) {
	for i, span := range spans {
		if err := detector.CheckSpan(source, span, i); err != nil {
			return nil, err
		}
	}
	if len(spans) == 0 {
		return nil, nil
	}

	ordered := make([]detector.RawSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	entities := make([]detector.MergedEntity, 0, len(ordered))
	run := ordered[0]
	for _, span := range ordered[1:] {
		if span.Category == run.Category && span.Start == run.Start && span.End == run.End {
			run.Confidence = max(run.Confidence, span.Confidence)
			continue
		}
		if span.Category == run.Category && m.adjacent(run, span, source) {
			run.End = span.End
			run.Confidence = max(run.Confidence, span.Confidence)
			continue
		}
		entities = append(entities, finalize(run, source))
		run = span
	}
	entities = append(entities, finalize(run, source))
	return entities, nil
}

// adjacent reports whether next continues run in the original text.
func (m *Merger) adjacent(run, next detector.RawSpan, source string) bool {
	if next.Start == run.End {
		return true
	}
	if m.opts.Mode != ModeWhitespaceGap || next.Start < run.End {
		return false
	}
	gap := source[run.End:next.Start]
	return len(gap) <= m.opts.MaxGap && strings.TrimFunc(gap, unicode.IsSpace) == ""
}

func finalize(run detector.RawSpan, source string) detector.MergedEntity {
	return detector.MergedEntity{
		Category:   run.Category,
		Text:       source[run.Start:run.End],
		Start:      run.Start,
		End:        run.End,
		Confidence: run.Confidence,
	}
}

// Merge runs a strict Merger.
func Merge(spans []detector.RawSpan, source string) ([]detector.MergedEntity, error) {
	return New(DefaultOptions()).Merge(spans, source)
}
