// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"policy-guard/internal/help"
	"policy-guard/internal/validators/creditcard"
	"policy-guard/internal/validators/email"
	"policy-guard/internal/validators/phone"
)

func newChecksCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "checks [name]",
		Short: "List the deterministic pattern checks or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			system := help.NewSystem(noColor || !isTerminal(out))
			system.RegisterProvider(email.NewValidator())
			system.RegisterProvider(phone.NewValidator())
			system.RegisterProvider(creditcard.NewValidator())

			if len(args) == 0 {
				system.ShowChecksHelp(out)
				return nil
			}
			if !system.ShowCheckHelp(out, strings.ToUpper(args[0])) {
				return fmt.Errorf("unknown check %q", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}
