// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"policy-guard/internal/core"
	"policy-guard/internal/detector"
	"policy-guard/internal/formatters"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML format output with the same fields as JSON"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(result core.ScanResult, options formatters.FormatterOptions) (string, error) {
	if result.Flagged == nil {
		result.Flagged = []detector.EntityGroup{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	return buf.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
