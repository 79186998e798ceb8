// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"fmt"

	"policy-guard/internal/help"
)

var exampleNumbers = []string{
	"4111111111111111",
	"5500000000000004",
	"1234567890123",
}

// GetCheckInfo returns standardized information about the credit card check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	examples := make([]string, 0, len(exampleNumbers))
	for _, n := range exampleNumbers {
		note := "fails Luhn, still flagged"
		if LuhnValid(n) {
			note = "passes Luhn"
		}
		examples = append(examples, fmt.Sprintf("%s (%s)", n, note))
	}
	return help.CheckInfo{
		Name:             string(Category),
		ShortDescription: "Detects 13-16 digit payment card numbers",
		DetailedDescription: `The Credit Card check finds contiguous runs of 13 to 16 digits bounded by
non-word characters. Numbers written with spaces or dashes between digit groups are left
to the statistical classifier.`,
		Patterns: []string{v.pattern},
		Examples: examples,
	}
}
