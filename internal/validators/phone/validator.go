// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"regexp"

	"policy-guard/internal/detector"
)

// Category is the tag attached to phone matches.
const Category detector.Category = "PHONE"

// Validator implements the detector.Validator interface for phone numbers
// written as 3-3-4 digit groups, optionally separated by one of - . or a
// whitespace character.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b\d{3}[-.\s]??\d{3}[-.\s]??\d{4}\b`,
	}
	v.regex = regexp.MustCompile(v.pattern)
	return v
}

func (v *Validator) Category() detector.Category {
	return Category
}

// ValidateContent returns every phone number in content.
func (v *Validator) ValidateContent(content string) ([]detector.RawSpan, error) {
	return detector.MatchPattern(v.regex, Category, content), nil
}
