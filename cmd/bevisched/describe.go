package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the demo schedule's computed stage plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildDemoApp()
			for _, name := range a.Schedule().StageNames() {
				stage := a.Schedule().GetStage(name)
				d, err := stage.Describe()
				if err != nil {
					return fmt.Errorf("stage %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", d.Name)
				printBucket(cmd, "at_start", d.AtStart)
				printBucket(cmd, "parallel", d.Parallel)
				printBucket(cmd, "before_commands", d.BeforeCommands)
				printBucket(cmd, "at_end", d.AtEnd)
			}
			return nil
		},
	}
}

func printBucket(cmd *cobra.Command, label string, systems []string) {
	if len(systems) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", label, systems)
}
