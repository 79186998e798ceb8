// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
)

// DefaultMinConfidence is the policy default threshold below which classifier
// detections are discarded.
const DefaultMinConfidence = 0.15

// Normalizer canonicalizes raw classifier detections and drops the ones below
// MinConfidence. Filtering happens before merging so a weak fragment can never
// extend or dilute a strong neighbor.
type Normalizer struct {
	MinConfidence float64
}

// NewNormalizer creates a normalizer with the given threshold.
func NewNormalizer(minConfidence float64) Normalizer {
	return Normalizer{MinConfidence: minConfidence}
}

// Normalize returns the canonical record and whether it survives the
// threshold. NaN confidences never survive.
func (n Normalizer) Normalize(span RawSpan) (RawSpan, bool) {
	if !(span.Confidence >= n.MinConfidence) {
		return RawSpan{}, false
	}
	span.Category = CanonicalCategory(string(span.Category))
	if span.Category == "" {
		return RawSpan{}, false
	}
	return span, true
}

// Filter normalizes every span, preserving order.
func (n Normalizer) Filter(spans []RawSpan) []RawSpan {
	out := make([]RawSpan, 0, len(spans))
	for _, span := range spans {
		if normalized, ok := n.Normalize(span); ok {
			out = append(out, normalized)
		}
	}
	return out
}

// CanonicalCategory upper-cases a label and strips the BIO prefix token
// classifiers attach to entity tags, so "B-budget" and "I-BUDGET" are the
// same category.
func CanonicalCategory(label string) Category {
	label = strings.ToUpper(strings.TrimSpace(label))
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		label = label[2:]
	}
	return Category(label)
}
