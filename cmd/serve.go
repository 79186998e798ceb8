// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"policy-guard/internal/core"
	"policy-guard/internal/web"
)

func newServeCmd(state *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API over HTTP",
		Long: `Starts the HTTP API:

  POST /scan              {"text": "..."} -> {"verdict", "flagged", ...}
  POST /export?format=    same body, returns a formatted document
  GET  /health
  GET  /metrics           Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := state.loadRuntime()
			if err != nil {
				return err
			}
			if addr != "" {
				rt.cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			scanner, err := core.NewScannerFromConfig(rt.cfg, rt.observer, reg)
			if err != nil {
				return err
			}

			srv := web.NewServer(web.Options{
				Scanner:       scanner,
				Logger:        rt.logger,
				Gatherer:      reg,
				CORSOrigins:   rt.cfg.Server.CORSOrigins,
				Collaborators: scanner.CollaboratorStats,
			})

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, rt.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, e.g. :8000)")
	return cmd
}
