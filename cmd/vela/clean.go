package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vela/internal/classpath"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the classpath stub cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := classpath.Open("")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear stub cache: %w", err)
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "stub cache cleared")
		}
		return nil
	},
}
