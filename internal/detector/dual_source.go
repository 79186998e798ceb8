// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"context"
	"errors"
	"fmt"

	"policy-guard/internal/observability"
)

// DualSourceDetector combines classifier output with deterministic validator
// matches. The two sources are independent and never deduplicated against
// each other here.
type DualSourceDetector struct {
	classifier Classifier // optional
	validators []Validator
	normalizer Normalizer
	observer   *observability.StandardObserver
}

// NewDualSourceDetector creates a detector. classifier may be nil, in which
// case only the validators run. Validators run in the order given.
func NewDualSourceDetector(classifier Classifier, validators []Validator, normalizer Normalizer) *DualSourceDetector {
	return &DualSourceDetector{
		classifier: classifier,
		validators: validators,
		normalizer: normalizer,
	}
}

// SetObserver sets the observability component
func (d *DualSourceDetector) SetObserver(observer *observability.StandardObserver) {
	d.observer = observer
}

// Detect returns all classifier spans that pass the normalizer, in classifier
// order, followed by every validator match in validator order then match
// order. Empty text produces no spans and no classifier call.
func (d *DualSourceDetector) Detect(ctx context.Context, scanID, text string) ([]RawSpan, error) {
	if text == "" {
		return nil, nil
	}

	var spans []RawSpan

	if d.classifier != nil {
		finishTiming := d.observer.StartTiming("detector", "classify", scanID)
		raw, err := d.classifier.Classify(ctx, text)
		if err != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
			var unavailable *DetectorUnavailableError
			if errors.As(err, &unavailable) {
				return nil, err
			}
			return nil, &DetectorUnavailableError{Detector: "classifier", Err: err}
		}
		kept := d.normalizer.Filter(raw)
		finishTiming(true, map[string]interface{}{
			"raw_count":     len(raw),
			"kept_count":    len(kept),
			"dropped_count": len(raw) - len(kept),
		})
		spans = append(spans, kept...)
	}

	for _, v := range d.validators {
		matches, err := v.ValidateContent(text)
		if err != nil {
			return nil, fmt.Errorf("validator %s failed: %w", v.Category(), err)
		}
		spans = append(spans, matches...)
	}

	if d.observer != nil && d.observer.DebugObserver != nil {
		d.observer.DebugObserver.LogMetric("detector", "candidate_spans", len(spans))
	}
	return spans, nil
}
