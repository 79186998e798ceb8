// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"
)

type stubProvider struct{ info CheckInfo }

func (s stubProvider) GetCheckInfo() CheckInfo { return s.info }

func newTestSystem() *System {
	h := NewSystem(true)
	h.RegisterProvider(stubProvider{CheckInfo{
		Name:                "PHONE",
		ShortDescription:    "Detects phone numbers",
		DetailedDescription: "Three-three-four digit groups.",
		Patterns:            []string{`\d{3}`},
		Examples:            []string{"555-123-4567"},
	}})
	h.RegisterProvider(stubProvider{CheckInfo{Name: "EMAIL", ShortDescription: "Detects email addresses"}})
	return h
}

func TestShowChecksHelp(t *testing.T) {
	var buf bytes.Buffer
	newTestSystem().ShowChecksHelp(&buf)

	out := buf.String()
	emailAt := strings.Index(out, "EMAIL")
	phoneAt := strings.Index(out, "PHONE")
	if emailAt < 0 || phoneAt < 0 || emailAt > phoneAt {
		t.Errorf("expected sorted EMAIL then PHONE rows, got:\n%s", out)
	}
	if !strings.Contains(out, "Detects phone numbers") {
		t.Errorf("missing description:\n%s", out)
	}
}

func TestShowCheckHelp(t *testing.T) {
	var buf bytes.Buffer
	h := newTestSystem()

	if !h.ShowCheckHelp(&buf, " phone ") {
		t.Fatal("expected PHONE to be found")
	}
	out := buf.String()
	for _, want := range []string{"Three-three-four", "Patterns:", `\d{3}`, "555-123-4567"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if h.ShowCheckHelp(&buf, "SSN") {
		t.Error("expected SSN to be unknown")
	}
}
