// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"policy-guard/internal/core"
	"policy-guard/internal/detector"
	"policy-guard/internal/formatters"
	_ "policy-guard/internal/formatters/json"
	_ "policy-guard/internal/formatters/text"
	_ "policy-guard/internal/formatters/yaml"
)

func blockResult() core.ScanResult {
	return core.ScanResult{
		Verdict: core.VerdictBlock,
		Flagged: []detector.EntityGroup{
			{Category: "EMAIL", Values: []string{"alice@example.com"}, Explanation: "Clause 2.1: Emails are personal data."},
			{Category: "BUDGET", Values: []string{"$50,000", "$50,000"}, Explanation: core.ExplanationPlaceholder},
		},
		ScanID:     "6f1c7f9e-0000-4000-8000-000000000000",
		DurationMs: 42,
	}
}

func TestList_Sorted(t *testing.T) {
	assert.Equal(t, []string{"json", "text", "yaml"}, formatters.List())
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := formatters.Export("sarif", blockResult(), formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json, text, yaml")
}

func TestExport_JSONShape(t *testing.T) {
	out, err := formatters.Export("json", blockResult(), formatters.FormatterOptions{Compact: true})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "BLOCK", decoded["verdict"])
	assert.NotContains(t, decoded, "error")

	flagged := decoded["flagged"].([]interface{})
	require.Len(t, flagged, 2)
	first := flagged[0].(map[string]interface{})
	assert.Equal(t, "EMAIL", first["entity_group"])
	assert.Equal(t, []interface{}{"alice@example.com"}, first["words"])
	assert.Equal(t, "Clause 2.1: Emails are personal data.", first["explanation"])
}

func TestExport_JSONEmptyFlaggedIsArray(t *testing.T) {
	out, err := formatters.Export("json", core.ScanResult{Verdict: core.VerdictError, Error: "detection failed"}, formatters.FormatterOptions{Compact: true})
	require.NoError(t, err)
	assert.Contains(t, out, `"flagged":[]`)
	assert.Contains(t, out, `"error":"detection failed"`)
}

func TestExport_YAML(t *testing.T) {
	out, err := formatters.Export("yaml", blockResult(), formatters.FormatterOptions{})
	require.NoError(t, err)

	var decoded struct {
		Verdict string `yaml:"verdict"`
		Flagged []struct {
			EntityGroup string   `yaml:"entity_group"`
			Words       []string `yaml:"words"`
		} `yaml:"flagged"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "BLOCK", decoded.Verdict)
	require.Len(t, decoded.Flagged, 2)
	assert.Equal(t, "BUDGET", decoded.Flagged[1].EntityGroup)
	assert.Equal(t, []string{"$50,000", "$50,000"}, decoded.Flagged[1].Words)
}

func TestExport_Text(t *testing.T) {
	out, err := formatters.Export("text", blockResult(), formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Verdict: BLOCK\n"))
	assert.Contains(t, out, "EMAIL (1)\n  - alice@example.com\n  Clause 2.1: Emails are personal data.\n")
	assert.Contains(t, out, "BUDGET (2)")
	assert.Contains(t, out, "scan 6f1c7f9e-0000-4000-8000-000000000000 in 42ms")
	assert.NotContains(t, out, "\x1b[")
}

func TestExport_TextAllow(t *testing.T) {
	out, err := formatters.Export("text", core.ScanResult{Verdict: core.VerdictAllow}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "Verdict: ALLOW\nNo sensitive data found.\n", out)
}

func TestExportForWeb(t *testing.T) {
	content, mime, filename, err := formatters.ExportForWeb("yaml", blockResult(), formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Equal(t, "application/x-yaml", mime)
	assert.Equal(t, "policy-guard-6f1c7f9e-0000-4000-8000-000000000000.yaml", filename)
}
