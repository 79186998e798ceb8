// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-guard/internal/detector"
	"policy-guard/internal/validators/creditcard"
	"policy-guard/internal/validators/email"
	"policy-guard/internal/validators/phone"
)

func patternValidators() []detector.Validator {
	return []detector.Validator{email.NewValidator(), phone.NewValidator(), creditcard.NewValidator()}
}

func TestDetect_OrderingAndThreshold(t *testing.T) {
	text := "card 4111111111111111 mail bob@example.com call 555-123-4567"
	cls := detector.ClassifierFunc(func(context.Context, string) ([]detector.RawSpan, error) {
		return []detector.RawSpan{
			{Category: "B-PERSON", Text: "bob", Start: 27, End: 30, Confidence: 0.8},
			{Category: "ORG", Text: "card", Start: 0, End: 4, Confidence: 0.05},
			{Category: "I-PERSON", Text: "mail", Start: 22, End: 26, Confidence: 0.3},
		}, nil
	})
	d := detector.NewDualSourceDetector(cls, patternValidators(), detector.NewNormalizer(detector.DefaultMinConfidence))

	got, err := d.Detect(context.Background(), "scan-1", text)
	require.NoError(t, err)

	want := []detector.RawSpan{
		// classifier results first, in classifier order, below-threshold dropped
		{Category: "PERSON", Text: "bob", Start: 27, End: 30, Confidence: 0.8},
		{Category: "PERSON", Text: "mail", Start: 22, End: 26, Confidence: 0.3},
		// then EMAIL, PHONE, CREDIT_CARD pattern matches
		{Category: "EMAIL", Text: "bob@example.com", Start: 27, End: 42, Confidence: 1.0},
		{Category: "PHONE", Text: "555-123-4567", Start: 48, End: 60, Confidence: 1.0},
		{Category: "CREDIT_CARD", Text: "4111111111111111", Start: 5, End: 21, Confidence: 1.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Detect() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_EmptyTextSkipsClassifier(t *testing.T) {
	called := false
	cls := detector.ClassifierFunc(func(context.Context, string) ([]detector.RawSpan, error) {
		called = true
		return nil, nil
	})
	d := detector.NewDualSourceDetector(cls, patternValidators(), detector.NewNormalizer(0.15))

	got, err := d.Detect(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestDetect_PatternsOnly(t *testing.T) {
	d := detector.NewDualSourceDetector(nil, patternValidators(), detector.NewNormalizer(0.15))
	got, err := d.Detect(context.Background(), "", "reach me at 555.123.4567")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, detector.Category("PHONE"), got[0].Category)
}

func TestDetect_ClassifierFailure(t *testing.T) {
	cause := errors.New("connection refused")
	cls := detector.ClassifierFunc(func(context.Context, string) ([]detector.RawSpan, error) {
		return nil, cause
	})
	d := detector.NewDualSourceDetector(cls, patternValidators(), detector.NewNormalizer(0.15))

	_, err := d.Detect(context.Background(), "", "text")
	var unavailable *detector.DetectorUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, cause)
}

func TestDetect_ClassifierUnavailablePassesThrough(t *testing.T) {
	original := &detector.DetectorUnavailableError{Detector: "ner-sidecar", Err: errors.New("503")}
	cls := detector.ClassifierFunc(func(context.Context, string) ([]detector.RawSpan, error) {
		return nil, original
	})
	d := detector.NewDualSourceDetector(cls, nil, detector.NewNormalizer(0.15))

	_, err := d.Detect(context.Background(), "", "text")
	var unavailable *detector.DetectorUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Same(t, original, unavailable)
}
