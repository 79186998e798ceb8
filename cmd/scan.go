// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"policy-guard/internal/core"
	"policy-guard/internal/formatters"
	_ "policy-guard/internal/formatters/json"
	_ "policy-guard/internal/formatters/text"
	_ "policy-guard/internal/formatters/yaml"
)

// maxInputBytes bounds text read from a file or stdin.
const maxInputBytes = 10 << 20

type scanFlags struct {
	file    string
	format  string
	noColor bool
	verbose bool
	checks  string
	compact bool
}

func newScanCmd(state *cliState) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [text]",
		Short: "Scan text for sensitive data",
		Long: `Scan text given as arguments, read from --file, or piped on stdin.

Exit status is 0 for ALLOW, 1 for BLOCK and 2 for ERROR.`,
		Example: `  policy-guard scan "Send the report to alice@example.com"
  policy-guard scan --file draft.txt --format json
  cat draft.txt | policy-guard scan --profile offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, state, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Read text from this file")
	f.StringVar(&flags.format, "format", "", "Output format: "+strings.Join(formatters.List(), ", ")+" (default from config)")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Include scan ID and timing in the output")
	f.StringVar(&flags.checks, "checks", "", "Comma-separated pattern checks to run: EMAIL, PHONE, CREDIT_CARD or all")
	f.BoolVar(&flags.compact, "compact", false, "Compact JSON output")
	return cmd
}

func runScan(cmd *cobra.Command, state *cliState, flags scanFlags, args []string) error {
	rt, err := state.loadRuntime()
	if err != nil {
		return err
	}
	cfg := rt.cfg

	if flags.checks != "" {
		cfg.Detector.Patterns = strings.Split(flags.checks, ",")
	}
	format := cfg.Defaults.Format
	if flags.format != "" {
		format = flags.format
	}
	if _, ok := formatters.Get(format); !ok {
		return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(formatters.List(), ", "))
	}

	text, err := readInput(flags.file, args, state.stdin)
	if err != nil {
		return err
	}

	scanner, err := core.NewScannerFromConfig(cfg, rt.observer, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result := scanner.Scan(ctx, text)

	out := cmd.OutOrStdout()
	noColor := flags.noColor || cfg.Defaults.NoColor || !isTerminal(out)
	rendered, err := formatters.Export(format, result, formatters.FormatterOptions{
		Verbose: flags.verbose || cfg.Defaults.Verbose,
		NoColor: noColor,
		Compact: flags.compact,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(out)
	}

	switch result.Verdict {
	case core.VerdictAllow:
		state.exitCode = exitAllow
	case core.VerdictBlock:
		state.exitCode = exitBlock
	default:
		state.exitCode = exitError
	}
	return nil
}

// readInput picks the text to scan: --file, then arguments, then stdin.
func readInput(file string, args []string, stdin io.Reader) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("pass text either as arguments or with --file, not both")
	case file != "":
		f, err := os.Open(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("error opening input: %w", err)
		}
		defer f.Close()
		return readLimited(f)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case stdin != nil:
		return readLimited(stdin)
	}
	return "", nil
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxInputBytes)
	}
	return string(data), nil
}
