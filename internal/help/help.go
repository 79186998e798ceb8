// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string   // Name of the check (e.g., "CREDIT_CARD")
	ShortDescription    string   // Short description for the checks list
	DetailedDescription string   // Detailed description of what the check does
	Patterns            []string // Patterns the check looks for
	Examples            []string // Sample values the check flags
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the deterministic checks
type System struct {
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"subtitle": color.New(color.FgCyan, color.Bold),
			"example":  color.New(color.FgGreen),
		},
	}
}

// RegisterProvider registers a help content provider
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[info.Name] = provider
}

func (h *System) names() []string {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowChecksHelp writes a table of every registered check
func (h *System) ShowChecksHelp(w io.Writer) {
	h.colors["title"].Fprintln(w, "Deterministic checks (run alongside the classifier):")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tDESCRIPTION")
	for _, name := range h.names() {
		info := h.providers[name].GetCheckInfo()
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.ShortDescription)
	}
	tw.Flush()
}

// ShowCheckHelp writes the detailed help for one check. It returns false if
// the check is unknown.
func (h *System) ShowCheckHelp(w io.Writer, checkName string) bool {
	provider, ok := h.providers[strings.ToUpper(strings.TrimSpace(checkName))]
	if !ok {
		return false
	}
	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(w, "%s\n", info.Name)
	fmt.Fprintf(w, "%s\n\n", info.DetailedDescription)

	if len(info.Patterns) > 0 {
		h.colors["subtitle"].Fprintln(w, "Patterns:")
		for _, p := range info.Patterns {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintln(w)
	}
	if len(info.Examples) > 0 {
		h.colors["subtitle"].Fprintln(w, "Examples:")
		for _, e := range info.Examples {
			h.colors["example"].Fprintf(w, "  %s\n", e)
		}
	}
	return true
}
