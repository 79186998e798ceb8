// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package explain

import (
	"context"
	"errors"
	"strings"

	"policy-guard/internal/detector"
)

// Unknown is the static answer for categories without an entry.
const Unknown = "unknown"

// StaticExplainer answers from a fixed category table. It never calls out
// and is safe for concurrent use.
type StaticExplainer struct {
	table map[detector.Category]string
}

// NewStaticExplainer builds a StaticExplainer. Keys are canonicalized the same
// way detected categories are.
func NewStaticExplainer(table map[string]string) *StaticExplainer {
	t := make(map[detector.Category]string, len(table))
	for k, v := range table {
		t[detector.CanonicalCategory(k)] = v
	}
	return &StaticExplainer{table: t}
}

func (s *StaticExplainer) Explain(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("explain: empty question")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	category, ok := CategoryOf(question)
	if !ok {
		return Unknown, nil
	}
	if answer, found := s.table[category]; found {
		return answer, nil
	}
	return Unknown, nil
}
