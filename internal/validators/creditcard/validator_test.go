// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

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
		{"sixteen digits", "card 4111111111111111 exp", []string{"4111111111111111"}},
		{"thirteen digits", "id 1234567890123", []string{"1234567890123"}},
		{"no checksum required", "4111111111111112", []string{"4111111111111112"}},
		{"twelve digits", "123456789012", nil},
		{"seventeen digits", "12345678901234567", nil},
		{"grouped digits", "4111 1111 1111 1111", nil},
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
				if s.Text != tt.want[i] {
					t.Errorf("match %d = %q, want %q", i, s.Text, tt.want[i])
				}
			}
		})
	}
}

func TestLuhnValid(t *testing.T) {
	tests := map[string]bool{
		"4111111111111111": true,
		"5500000000000004": true,
		"4111111111111112": false,
		"1234567890123":    false,
		"":                 false,
		"4111-1111":        false,
	}
	for number, want := range tests {
		if got := LuhnValid(number); got != want {
			t.Errorf("LuhnValid(%q) = %v, want %v", number, got, want)
		}
	}
}
