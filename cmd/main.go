// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// policy-guard scans text for sensitive data and explains, against a policy
// document, why sharing it is or is not allowed.
//
// Usage:
//
//	policy-guard scan [text] [--file=<path>] [--format=json|yaml|text]
//	policy-guard serve [--addr=:8000]
//	policy-guard checks [name]
//	policy-guard version
package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes of the scan command; anything that stops a scan from running
// also exits with exitError.
const (
	exitAllow = 0
	exitBlock = 1
	exitError = 2
)

func main() {
	code, err := execute(os.Args[1:], os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout io.Writer, stdin io.Reader) (int, error) {
	root, state := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	state.stdin = stdin
	if err := root.Execute(); err != nil {
		return exitError, err
	}
	return state.exitCode, nil
}
