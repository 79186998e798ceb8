// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector holds the span data model shared by every stage of a scan
// and the dual-source detector that produces raw spans from a statistical
// classifier plus deterministic pattern validators.
package detector

import (
	"context"
)

// Category is an open-ended sensitive-data tag such as EMAIL, BUDGET or NRIC.
// New categories appear whenever the classifier is retrained, so it is never
// treated as a closed set.
type Category string

// RawSpan is one detection before consolidation. Start and End are half-open
// byte offsets into the scanned text.
type RawSpan struct {
	Category   Category
	Text       string // as reported by the source; may be a subword fragment
	Start      int
	End        int
	Confidence float64
}

// MergedEntity is a consolidated, category-pure span. Text is always the
// source text re-sliced at [Start:End].
type MergedEntity struct {
	Category   Category
	Text       string
	Start      int
	End        int
	Confidence float64
}

// EntityGroup aggregates every value of one category found in a single scan.
type EntityGroup struct {
	Category    Category `json:"entity_group" yaml:"entity_group"`
	Values      []string `json:"words" yaml:"words"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

// Classifier is the statistical token-classification collaborator. It must
// return spans in left-to-right document order.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]RawSpan, error)
}

// Validator is a deterministic pattern matcher for a category with an
// unambiguous lexical grammar. Matches carry confidence 1.0.
type Validator interface {
	Category() Category
	ValidateContent(content string) ([]RawSpan, error)
}

// Explainer is the policy-lookup collaborator.
type Explainer interface {
	Explain(ctx context.Context, question string) (string, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) ([]RawSpan, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) ([]RawSpan, error) {
	return f(ctx, text)
}

// ExplainerFunc adapts a plain function to the Explainer interface.
type ExplainerFunc func(ctx context.Context, question string) (string, error)

func (f ExplainerFunc) Explain(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}
