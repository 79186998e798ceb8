// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
)

// PatternConfidence is the fixed confidence of deterministic matches.
const PatternConfidence = 1.0

// MatchPattern returns every non-overlapping match of re in content as a
// RawSpan of the given category, in match order.
func MatchPattern(re *regexp.Regexp, category Category, content string) []RawSpan {
	locs := re.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]RawSpan, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, RawSpan{
			Category:   category,
			Text:       content[loc[0]:loc[1]],
			Start:      loc[0],
			End:        loc[1],
			Confidence: PatternConfidence,
		})
	}
	return spans
}
