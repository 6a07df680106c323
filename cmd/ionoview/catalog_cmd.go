// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/selection"
)

func catalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the media directory",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the catalog entries found in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			entries, err := catalog.Load(cmd.Context(), catalog.OSLister{}, cfg.DataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			labels := selection.Labels(cfg.SourceLabels)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "SOURCE\tLABEL\tSTATE\tFILE")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Source, labels.Label(e.Source), e.State, e.File)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	cmd.AddCommand(list)
	return cmd
}

func resolveCmd(opts *rootOptions) *cobra.Command {
	var req selection.Request
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a source and state against the catalog and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			entries, err := catalog.Load(cmd.Context(), catalog.OSLister{}, cfg.DataDir)
			if err != nil {
				return err
			}
			res := selection.Resolve(entries, selection.Labels(cfg.SourceLabels), req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&req.Source, "source", "", "requested source identifier")
	cmd.Flags().StringVar(&req.State, "state", "", "requested state (Quiet, Moderate, Storm)")
	return cmd
}
