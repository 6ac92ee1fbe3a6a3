// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func newRootCmd() *cobra.Command {
	var level string

	root := &cobra.Command{
		Use:           "alscpd",
		Short:         "CP decomposition of gridded scalar fields by alternating least squares",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl, err := zerolog.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "Log level (trace|debug|info|warn|error)")
	root.AddCommand(newRunCmd())

	return root
}
