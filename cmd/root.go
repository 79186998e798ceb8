// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"policy-guard/internal/config"
	"policy-guard/internal/observability"
	"policy-guard/internal/version"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	profile    string
	envFile    string
	logLevel   string
	logFormat  string
	debug      bool
}

// cliState carries flag values and the scan outcome between cobra hooks.
type cliState struct {
	flags    globalFlags
	exitCode int
	stdin    io.Reader
}

func newRootCmd() (*cobra.Command, *cliState) {
	state := &cliState{stdin: os.Stdin}

	root := &cobra.Command{
		Use:   "policy-guard",
		Short: "Detect sensitive data in text and explain the applicable policy",
		Long: `policy-guard combines a token-classification sidecar with deterministic
pattern checks, merges fragmented detections, groups them by category and asks a
policy-aware language model whether each category may be shared.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetVersionTemplate(version.Info() + "\n")

	pf := root.PersistentFlags()
	pf.StringVar(&state.flags.configFile, "config", "", "Path to configuration file (default: search policy-guard.yaml)")
	pf.StringVar(&state.flags.profile, "profile", "", "Configuration profile to apply")
	pf.StringVar(&state.flags.envFile, "env-file", "", "Load environment overrides from this file instead of .env")
	pf.StringVar(&state.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&state.flags.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	pf.BoolVar(&state.flags.debug, "debug", false, "Enable step-by-step debug logging")

	root.AddCommand(newScanCmd(state), newServeCmd(state), newChecksCmd(), newVersionCmd())
	return root, state
}

// session is the configuration and observer a subcommand works with.
type session struct {
	cfg      *config.Config
	logger   *logrus.Logger
	observer *observability.StandardObserver
}

// loadRuntime resolves configuration (file, profile, environment, flags) and
// builds the logger. Logs go to stderr so stdout stays clean for results.
func (s *cliState) loadRuntime() (*session, error) {
	configPath := s.flags.configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if s.flags.profile != "" {
		if err := cfg.ApplyProfile(s.flags.profile); err != nil {
			return nil, err
		}
	}

	var envFiles []string
	if s.flags.envFile != "" {
		envFiles = append(envFiles, s.flags.envFile)
	}
	if err := config.ApplyEnv(cfg, envFiles...); err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if s.flags.logLevel != "" {
		level = s.flags.logLevel
	}
	debug := s.flags.debug || cfg.Defaults.Debug
	if debug {
		level = "debug"
	}
	format := cfg.Logging.Format
	if s.flags.logFormat != "" {
		format = s.flags.logFormat
	}

	logger, err := observability.NewLogger(level, format, os.Stderr)
	if err != nil {
		return nil, err
	}

	observer := observability.NewStandardObserver(observability.ObservabilityMetrics, logger)
	if debug {
		observer = observability.NewDebugObserver(logger).StandardObserver
	}
	if configPath != "" {
		logger.WithField("path", configPath).Debug("configuration loaded")
	}

	return &session{cfg: cfg, logger: logger, observer: observer}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
