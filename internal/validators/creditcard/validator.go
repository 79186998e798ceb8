// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"regexp"

	"policy-guard/internal/detector"
)

// Category is the tag attached to payment card matches.
const Category detector.Category = "CREDIT_CARD"

// Validator implements the detector.Validator interface for payment card
// numbers: contiguous runs of 13 to 16 digits.
type Validator struct {
	pattern string
	regex   *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `\b\d{13,16}\b`,
	}
	v.regex = regexp.MustCompile(v.pattern)
	return v
}

func (v *Validator) Category() detector.Category {
	return Category
}

// ValidateContent returns every card-like digit run in content. No Luhn
// check is applied; a 13-16 digit identifier is sensitive either way.
func (v *Validator) ValidateContent(content string) ([]detector.RawSpan, error) {
	return detector.MatchPattern(v.regex, Category, content), nil
}

// LuhnValid reports whether number passes the Luhn checksum. It is used by
// the help output to show which examples are real card numbers.
func LuhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return len(number) > 0 && sum%10 == 0
}
