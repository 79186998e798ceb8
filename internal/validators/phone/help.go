// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "policy-guard/internal/help"

// GetCheckInfo returns standardized information about the phone check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             string(Category),
		ShortDescription: "Detects 3-3-4 grouped phone numbers",
		DetailedDescription: `The Phone check finds ten-digit numbers grouped as three, three and four digits.
Groups may be joined directly or by a single dash, dot or whitespace character.`,
		Patterns: []string{v.pattern},
		Examples: []string{
			"555-123-4567",
			"555.123.4567",
			"5551234567",
		},
	}
}
