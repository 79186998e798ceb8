// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"regexp"

	"policy-guard/internal/detector"
)

// Category is the tag attached to email matches.
const Category detector.Category = "EMAIL"

// Validator implements the detector.Validator interface for detecting
// email addresses using a regex pattern.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
	}

	// Compile the regex pattern once at initialization
	v.regex = regexp.MustCompile(v.pattern)
	return v
}

func (v *Validator) Category() detector.Category {
	return Category
}

// ValidateContent returns every email address in content.
func (v *Validator) ValidateContent(content string) ([]detector.RawSpan, error) {
	return detector.MatchPattern(v.regex, Category, content), nil
}
