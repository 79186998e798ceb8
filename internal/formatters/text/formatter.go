// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"policy-guard/internal/core"
	"policy-guard/internal/formatters"
)

// Formatter implements text-based output formatting
type Formatter struct{}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colored verdict"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

type palette struct {
	verdict  map[core.Verdict]*color.Color
	category *color.Color
	dim      *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		verdict: map[core.Verdict]*color.Color{
			core.VerdictAllow: color.New(color.FgGreen, color.Bold),
			core.VerdictBlock: color.New(color.FgRed, color.Bold),
			core.VerdictError: color.New(color.FgYellow, color.Bold),
		},
		category: color.New(color.FgCyan, color.Bold),
		dim:      color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range p.verdict {
			c.DisableColor()
		}
		p.category.DisableColor()
		p.dim.DisableColor()
	}
	return p
}

func (f *Formatter) Format(result core.ScanResult, options formatters.FormatterOptions) (string, error) {
	p := newPalette(options.NoColor)
	var sb strings.Builder

	verdictColor, ok := p.verdict[result.Verdict]
	if !ok {
		verdictColor = p.dim
	}
	fmt.Fprintf(&sb, "Verdict: %s\n", verdictColor.Sprint(result.Verdict))

	if result.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", result.Error)
	}

	if len(result.Flagged) == 0 && result.Verdict == core.VerdictAllow {
		sb.WriteString("No sensitive data found.\n")
	}

	for i, group := range result.Flagged {
		if i > 0 || result.Error != "" {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%d)\n", p.category.Sprint(group.Category), len(group.Values))
		for _, v := range group.Values {
			fmt.Fprintf(&sb, "  - %s\n", v)
		}
		if group.Explanation != "" {
			fmt.Fprintf(&sb, "  %s\n", group.Explanation)
		}
	}

	if options.Verbose {
		sb.WriteString(p.dim.Sprintf("\nscan %s in %dms\n", result.ScanID, result.DurationMs))
	}

	return sb.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
