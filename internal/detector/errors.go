// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"unicode/utf8"
)

// InvalidSpanError reports a structurally invalid span returned by a detector:
// inverted, empty or out-of-bounds offsets, or offsets that split a UTF-8 rune.
type InvalidSpanError struct {
	Index   int // position in the span list handed to the merger
	Span    RawSpan
	TextLen int
	Reason  string
}

func (e *InvalidSpanError) Error() string {
	return fmt.Sprintf("invalid span #%d (%s [%d:%d]) over text of length %d: %s",
		e.Index, e.Span.Category, e.Span.Start, e.Span.End, e.TextLen, e.Reason)
}

// DetectorUnavailableError reports that the classifier collaborator could not
// be reached or loaded.
type DetectorUnavailableError struct {
	Detector string
	Err      error
}

func (e *DetectorUnavailableError) Error() string {
	return fmt.Sprintf("detector %s unavailable: %v", e.Detector, e.Err)
}

func (e *DetectorUnavailableError) Unwrap() error {
	return e.Err
}

// ExplanationUnavailableError reports a failed policy lookup for one category.
// It never aborts a scan.
type ExplanationUnavailableError struct {
	Category Category
	Err      error
}

func (e *ExplanationUnavailableError) Error() string {
	return fmt.Sprintf("explanation for %s unavailable: %v", e.Category, e.Err)
}

func (e *ExplanationUnavailableError) Unwrap() error {
	return e.Err
}

// CheckSpan verifies that span can be sliced out of text without truncation
// or corruption. index is only used for the error message.
func CheckSpan(text string, span RawSpan, index int) error {
	reason := ""
	switch {
	case span.Start < 0:
		reason = "start is negative"
	case span.End > len(text):
		reason = "end is past the end of the text"
	case span.End < span.Start:
		reason = "end precedes start"
	case span.End == span.Start:
		reason = "span is empty"
	case !isRuneBoundary(text, span.Start):
		reason = "start splits a UTF-8 sequence"
	case !isRuneBoundary(text, span.End):
		reason = "end splits a UTF-8 sequence"
	default:
		return nil
	}
	return &InvalidSpanError{Index: index, Span: span, TextLen: len(text), Reason: reason}
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	return utf8.RuneStart(s[i])
}
