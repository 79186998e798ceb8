// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package explain answers policy questions about flagged categories.
package explain

import (
	"fmt"
	"strings"

	"policy-guard/internal/detector"
)

const questionPrefix = "Is it allowed to share "

// Question builds the query sent to an Explainer for one entity group, e.g.
// "Is it allowed to share EMAIL like 'a@x.io', 'b@y.io'?".
func Question(category detector.Category, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return fmt.Sprintf("%s%s like %s?", questionPrefix, category, strings.Join(quoted, ", "))
}

// CategoryOf recovers the category from a question built by Question. ok is
// false for free-form questions.
func CategoryOf(question string) (detector.Category, bool) {
	rest, found := strings.CutPrefix(question, questionPrefix)
	if !found {
		return "", false
	}
	category, _, found := strings.Cut(rest, " like ")
	if !found || category == "" {
		return "", false
	}
	return detector.Category(category), true
}
