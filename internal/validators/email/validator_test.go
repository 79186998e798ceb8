// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"testing"
)

func TestValidateContent(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"simple", "contact alice@example.com today", []string{"alice@example.com"}},
		{"plus and dots", "j.doe+billing@corp.example.org", []string{"j.doe+billing@corp.example.org"}},
		{"two addresses", "a@b.co, c@d.io", []string{"a@b.co", "c@d.io"}},
		{"no tld", "user@localhost", nil},
		{"one-letter tld", "user@example.c", nil},
		{"no at sign", "example.com", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := v.ValidateContent(tt.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(spans) != len(tt.want) {
				t.Fatalf("got %d matches, want %d: %+v", len(spans), len(tt.want), spans)
			}
			for i, s := range spans {
				if s.Text != tt.want[i] || tt.content[s.Start:s.End] != tt.want[i] {
					t.Errorf("match %d = %q [%d:%d], want %q", i, s.Text, s.Start, s.End, tt.want[i])
				}
				if s.Category != Category || s.Confidence != 1.0 {
					t.Errorf("unexpected category/confidence: %+v", s)
				}
			}
		})
	}
}

func TestGetCheckInfo(t *testing.T) {
	info := NewValidator().GetCheckInfo()
	if info.Name != "EMAIL" || len(info.Patterns) != 1 || len(info.Examples) == 0 {
		t.Errorf("unexpected check info: %+v", info)
	}
}
