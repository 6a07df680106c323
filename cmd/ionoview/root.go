// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/version"
)

const envConfigPath = config.EnvPrefix + "CONFIG"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ionoview",
		Short:         "Ionosphere forecast model explorer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version.String(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		config.ParseString(envConfigPath, ""), "path to config file (YAML), env "+envConfigPath)

	root.AddCommand(
		serveCmd(opts),
		catalogCmd(opts),
		resolveCmd(opts),
		configCmd(opts),
		versionCmd(),
	)
	return root
}

// loadConfig runs the full loader for the selected config path.
func loadConfig(opts *rootOptions) (config.AppConfig, *config.Loader, error) {
	loader := config.NewLoader(opts.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, loader, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
