package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vela/internal/config"
	"vela/internal/driver"
	"vela/internal/phases"
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List the lowering phases in schedule order",
	Long: `Phases prints the standard phase schedule. The wave number groups
phases with no ordering constraints between them; "?" marks phases that can
be disabled in vela.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := phases.NewRegistry()
		driver.RegisterStandardPhases(reg, driver.ListingEnv(config.Default()))

		topo := reg.Schedule()
		if topo.Cyclic {
			return fmt.Errorf("phase graph has a cycle through %s", strings.Join(topo.Cycles, ", "))
		}

		out := cmd.OutOrStdout()
		for wave, batch := range topo.Batches {
			for _, name := range batch {
				p := reg.Lookup(name)
				marker := " "
				if p.Optional {
					marker = "?"
				}
				line := fmt.Sprintf("%d %s %-16s %s", wave+1, marker, p.Name, p.Desc)
				if len(p.Prereqs) > 0 {
					line += fmt.Sprintf(" (after %s)", strings.Join(p.Prereqs, ", "))
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}
