// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"policy-guard/internal/core"
	"policy-guard/internal/detector"
	"policy-guard/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output, the same shape the HTTP API returns"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(result core.ScanResult, options formatters.FormatterOptions) (string, error) {
	if result.Flagged == nil {
		result.Flagged = []detector.EntityGroup{}
	}

	var data []byte
	var err error
	if options.Compact {
		data, err = json.Marshal(result)
	} else {
		data, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(data), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
