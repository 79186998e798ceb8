// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import "policy-guard/internal/help"

// GetCheckInfo returns standardized information about the email check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             string(Category),
		ShortDescription: "Detects email addresses",
		DetailedDescription: `The Email check finds addresses of the form local-part@domain.tld.

The local part may contain letters, digits and . _ % + -; the domain must end in a
top-level domain of at least two letters. Every match is reported with confidence 1.0
alongside whatever the statistical classifier reports for the same text.`,
		Patterns: []string{v.pattern},
		Examples: []string{
			"alice@example.com",
			"j.doe+billing@corp.example.org",
		},
	}
}
