// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package grouper aggregates merged entities by category so that each
// category needs only one policy lookup per scan.
package grouper

import (
	"policy-guard/internal/detector"
)

// Group builds one EntityGroup per distinct category. Categories appear in the
// order their first entity appears; values keep detection order and are not
// deduplicated, since each occurrence may carry its own context. Values are
// re-sliced from source, so entities with invalid offsets are rejected with a
// *detector.InvalidSpanError.
func Group(entities []detector.MergedEntity, source string) ([]detector.EntityGroup, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	index := make(map[detector.Category]int)
	groups := make([]detector.EntityGroup, 0)
	for i, entity := range entities {
		span := detector.RawSpan{
			Category: entity.Category,
			Start:    entity.Start,
			End:      entity.End,
		}
		if err := detector.CheckSpan(source, span, i); err != nil {
			return nil, err
		}

		pos, seen := index[entity.Category]
		if !seen {
			pos = len(groups)
			index[entity.Category] = pos
			groups = append(groups, detector.EntityGroup{Category: entity.Category})
		}
		groups[pos].Values = append(groups[pos].Values, source[entity.Start:entity.End])
	}
	return groups, nil
}

// Categories lists the categories of groups in order.
func Categories(groups []detector.EntityGroup) []detector.Category {
	out := make([]detector.Category, len(groups))
	for i, g := range groups {
		out[i] = g.Category
	}
	return out
}
